package stakeapi

import "time"

// ProfitDistribution marks that one plan got its payout for one UTC calendar
// day. The unique (plan_id, date) index is the idempotency guard: a second
// run on the same day conflicts and is skipped.
type ProfitDistribution struct {
	Id        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	PlanId    uint      `gorm:"not null;uniqueIndex:idx_plan_day" json:"plan_id"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_plan_day" json:"date"` // UTC midnight of the payout day
	Amount    float64   `gorm:"not null" json:"amount"`
}
