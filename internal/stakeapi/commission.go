package stakeapi

import "time"

// ReferralCommission records one commission payout: referrer earned
// commission_amount because referred transacted at the given upline level.
type ReferralCommission struct {
	Id               uint      `json:"id" gorm:"primarykey"`
	CreatedAt        time.Time `json:"created_at"`
	ReferrerId       uint      `gorm:"index;not null" json:"referrer_id"`
	ReferredId       uint      `gorm:"index;not null" json:"referred_id"`
	Lvl              uint      `gorm:"not null" json:"lvl"` // 1..6
	BaseAmount       float64   `json:"base_amount"`         // gross amount of the triggering transaction
	CommissionAmount float64   `gorm:"not null" json:"commission_amount"`
	ReferenceId      string    `gorm:"index" json:"reference_id"` // ties back to the triggering transaction
}
