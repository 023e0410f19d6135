package stakeapi

import "time"

// Admin request statuses, shared by deposits and withdrawals.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// DepositRequest is a manual top-up waiting for admin review. Approval
// credits the fund wallet through the ledger.
type DepositRequest struct {
	Id           uint       `json:"id" gorm:"primarykey"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ProfileId    uint       `gorm:"index;not null" json:"profile_id"`
	Amount       float64    `gorm:"not null" json:"amount"`
	Method       string     `json:"method"` // "bank", "ton", "usdt", ...
	TxHash       string     `gorm:"index" json:"tx_hash"`
	Status       string     `gorm:"index;not null;default:pending" json:"status"`
	AdminComment string     `json:"admin_comment"`
	ProcessedAt  *time.Time `json:"processed_at"`
}

// WithdrawalRequest is a main-wallet payout waiting for admin review.
// The wallet is only debited on approval; rejection never touches it.
type WithdrawalRequest struct {
	Id           uint       `json:"id" gorm:"primarykey"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ProfileId    uint       `gorm:"index;not null" json:"profile_id"`
	Amount       float64    `gorm:"not null" json:"amount"`
	Address      string     `json:"address"` // payout destination wallet
	Status       string     `gorm:"index;not null;default:pending" json:"status"`
	AdminComment string     `json:"admin_comment"`
	ProcessedAt  *time.Time `json:"processed_at"`
	TxId         uint       `json:"tx_id"` // the pending ledger row created with the request
}

// Coin purchase statuses.
const (
	PurchasePending = "pending"
	PurchasePaid    = "paid"
	PurchaseExpired = "expired"
)

// CoinPurchase is an automatic TON top-up. The watcher matches incoming
// transfers by memo and credits the fund wallet once.
type CoinPurchase struct {
	Id        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ProfileId uint      `gorm:"index;not null" json:"profile_id"`
	Amount    float64   `gorm:"not null" json:"amount"` // TON
	Memo      string    `gorm:"uniqueIndex;not null" json:"memo"`
	Address   string    `json:"address"` // platform wallet the user pays into
	Status    string    `gorm:"index;not null;default:pending" json:"status"`
	TxHash    string    `gorm:"index" json:"tx_hash"`
}
