package stakeapi

import "time"

// Transaction types.
const (
	TxDeposit       = "deposit"
	TxInvestment    = "investment"
	TxWithdrawal    = "withdrawal"
	TxProfit        = "profit"
	TxReferralBonus = "referral_bonus"
	TxAdjustment    = "adjustment"
	TxPurchase      = "purchase"
)

// Transaction statuses. Pending is the only non-terminal state.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
	TxStatusCancelled = "cancelled"
)

// Transaction is the append-only ledger row written for every
// balance-affecting event.
type Transaction struct {
	Id          uint      `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time `json:"created_at"`
	ProfileId   uint      `gorm:"index;not null" json:"profile_id"`
	AuthorId    uint      `json:"author_id"` // initiator: the profile itself or an admin
	Type        string    `gorm:"index;not null" json:"type"`
	Status      string    `gorm:"index;not null" json:"status"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `json:"description"`
	ReferenceId string    `gorm:"index" json:"reference_id"` // external correlation: tx hash, request id
}
