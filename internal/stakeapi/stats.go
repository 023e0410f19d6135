package stakeapi

import (
	"gorm.io/gorm"
)

type LvlStat struct {
	Lvl     uint    `json:"lvl"`
	Counter uint    `json:"counter"`
	Amount  float64 `json:"amount"`
}

// RefData summarizes a profile's referral earnings. DirectReferrals is the
// one authoritative referral count: profiles whose sponsor_id equals this
// profile's referral_code. Per-level rows summarize commission records and
// are not a referral count.
type RefData struct {
	DirectReferrals int64     `json:"direct_referrals"`
	TotalEarned     float64   `json:"total_earned"`
	Levels          []LvlStat `json:"levels"`
}

func GetRefStats(db *gorm.DB, profile Profile) (refStats RefData) {
	refStats.Levels = make([]LvlStat, MaxRefDepth)
	for i := range refStats.Levels {
		refStats.Levels[i].Lvl = uint(i + 1)
	}
	db.Model(&Profile{}).
		Where("sponsor_id = ?", profile.ReferralCode).
		Count(&refStats.DirectReferrals)
	var commissions []ReferralCommission
	res := db.Where("referrer_id = ?", profile.Id).Find(&commissions)
	if res.RowsAffected > 0 {
		for _, commission := range commissions {
			if commission.Lvl < 1 || commission.Lvl > MaxRefDepth {
				continue
			}
			refStats.TotalEarned += commission.CommissionAmount
			refStats.Levels[commission.Lvl-1].Counter++
			refStats.Levels[commission.Lvl-1].Amount += commission.CommissionAmount
		}
	}
	return refStats
}
