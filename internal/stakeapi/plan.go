package stakeapi

import "time"

type InvestmentPlan struct {
	Id                uint      `json:"id" gorm:"primarykey"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	ProfileId         uint      `gorm:"index;not null" json:"profile_id"`
	PlanName          string    `json:"plan_name"`
	InvestmentAmount  float64   `gorm:"not null" json:"investment_amount"` // principal, immutable once created
	DailyPercentage   float64   `gorm:"not null" json:"daily_percentage"`
	TotalProfitEarned float64   `json:"total_profit_earned"`
	IsActive          bool      `gorm:"index;default:true" json:"is_active"`
}

// DailyProfit is the amount one distribution credits for this plan.
func (p InvestmentPlan) DailyProfit() float64 {
	return RoundFloat(p.InvestmentAmount*p.DailyPercentage/100, 2)
}
