package referral

import (
	"stakevault/internal/stakeapi"
)

// Lookup fetches a profile by its referral code.
type Lookup func(referralCode string) (stakeapi.Profile, bool)

// Upline walks the sponsor chain of a profile, nearest ancestor first.
// The walk stops at MaxRefDepth, at the first profile without a sponsor,
// or when a cycle is detected.
func Upline(start stakeapi.Profile, lookup Lookup) []stakeapi.Profile {
	chain := make([]stakeapi.Profile, 0, stakeapi.MaxRefDepth)
	seen := map[uint]bool{start.Id: true}
	code := start.SponsorId
	for code != "" && len(chain) < stakeapi.MaxRefDepth {
		sponsor, ok := lookup(code)
		if !ok || seen[sponsor.Id] {
			break
		}
		seen[sponsor.Id] = true
		chain = append(chain, sponsor)
		code = sponsor.SponsorId
	}
	return chain
}

// CommissionFor computes the payout for one upline level on a gross base
// amount, rounded to cents.
func CommissionFor(base float64, level uint, ref stakeapi.RefSettings) float64 {
	return stakeapi.RoundFloat(base*ref.Rate(level), 2)
}
