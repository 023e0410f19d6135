package stakeapi

import (
	"gorm.io/gorm"
	"time"
)

type Profile struct {
	Id                uint           `json:"id" gorm:"primarykey"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
	Email             string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string         `gorm:"not null" json:"-"`
	ReferralCode      string         `gorm:"uniqueIndex;not null" json:"referral_code"`
	SponsorId         string         `gorm:"index" json:"sponsor_id"` // referral_code of the sponsor, empty for organic signups
	MainWalletBalance float64        `json:"main_wallet_balance"`     // withdrawable: profits, commissions, admin credits
	FundWalletBalance float64        `json:"fund_wallet_balance"`     // deposited principal, investable only
	TotalInvested     float64        `json:"total_invested"`
	TotalEarned       float64        `json:"total_earned"`
	IsAdmin           bool           `json:"is_admin"`
	IsBlocked         bool           `json:"is_blocked"`
	Locale            string         `json:"locale"`
	Ip                string         `json:"ip"`
}

// ProfileData is the trimmed profile shape pushed to clients over the API
// and the websocket sync channel.
type ProfileData struct {
	ID            uint    `json:"id"`
	Email         string  `json:"email"`
	MainWallet    float64 `json:"main_wallet"`
	FundWallet    float64 `json:"fund_wallet"`
	TotalInvested float64 `json:"total_invested"`
	TotalEarned   float64 `json:"total_earned"`
	ReferralCode  string  `json:"referral_code"`
}

func (p Profile) Data() ProfileData {
	return ProfileData{
		ID:            p.Id,
		Email:         p.Email,
		MainWallet:    p.MainWalletBalance,
		FundWallet:    p.FundWalletBalance,
		TotalInvested: p.TotalInvested,
		TotalEarned:   p.TotalEarned,
		ReferralCode:  p.ReferralCode,
	}
}
