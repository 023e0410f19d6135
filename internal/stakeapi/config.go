package stakeapi

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const configCacheKey = "app_config"

type AppConfig struct {
	Settings   AppSettings `json:"settings"`
	TonUsdRate float64     `json:"ton_usd_rate"`
}

type AppSettings struct {
	Ref    RefSettings  `json:"ref"`
	Plans  []PlanPreset `json:"plans"`
	Limits SettingLimit `json:"limits"`
}

// RefSettings holds the commission share paid to each upline level,
// as a fraction of the triggering amount.
type RefSettings struct {
	LvlOne   float64 `json:"lvl_one"`
	LvlTwo   float64 `json:"lvl_two"`
	LvlThree float64 `json:"lvl_three"`
	LvlFour  float64 `json:"lvl_four"`
	LvlFive  float64 `json:"lvl_five"`
	LvlSix   float64 `json:"lvl_six"`
}

// Rate returns the share for an upline level, 0 for anything outside 1..6.
func (r RefSettings) Rate(level uint) float64 {
	switch level {
	case 1:
		return r.LvlOne
	case 2:
		return r.LvlTwo
	case 3:
		return r.LvlThree
	case 4:
		return r.LvlFour
	case 5:
		return r.LvlFive
	case 6:
		return r.LvlSix
	}
	return 0
}

// MaxRefDepth is how far up the sponsor chain commissions are paid.
const MaxRefDepth = 6

type PlanPreset struct {
	Name            string  `json:"name"`
	MinAmount       float64 `json:"min_amount"`
	MaxAmount       float64 `json:"max_amount"`
	DailyPercentage float64 `json:"daily_percentage"`
}

type SettingLimit struct {
	DepositMin  float64 `json:"deposit_min"`
	InvestMin   float64 `json:"invest_min"`
	WithdrawMin float64 `json:"withdraw_min"`
	WithdrawMax float64 `json:"withdraw_max"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Settings: AppSettings{
			Ref: RefSettings{
				LvlOne:   0.10,
				LvlTwo:   0.05,
				LvlThree: 0.03,
				LvlFour:  0.02,
				LvlFive:  0.01,
				LvlSix:   0.005,
			},
			Plans: []PlanPreset{
				{Name: "starter", MinAmount: 50, MaxAmount: 999, DailyPercentage: 1.5},
				{Name: "growth", MinAmount: 1000, MaxAmount: 9999, DailyPercentage: 2.0},
				{Name: "premium", MinAmount: 10000, MaxAmount: 100000, DailyPercentage: 3.0},
			},
			Limits: SettingLimit{
				DepositMin:  10,
				InvestMin:   50,
				WithdrawMin: 10,
				WithdrawMax: 50000,
			},
		},
		TonUsdRate: 5.0,
	}
}

// LoadAppConfig reads the runtime config from redis, falling back to the
// defaults when the cache is empty or unparsable.
func LoadAppConfig(ctx context.Context, rdb *redis.Client) *AppConfig {
	raw, _ := rdb.Get(ctx, configCacheKey).Result()
	if len(raw) > 0 {
		cfg := &AppConfig{}
		if err := json.Unmarshal([]byte(raw), cfg); err == nil {
			return cfg
		}
	}
	return DefaultAppConfig()
}

// EnsureAppConfig seeds the redis cache with the defaults on first boot.
func EnsureAppConfig(rdb *redis.Client) {
	ctx := context.Background()
	raw, _ := rdb.Get(ctx, configCacheKey).Result()
	if len(raw) > 0 {
		return
	}
	current, _ := json.Marshal(DefaultAppConfig())
	rdb.Set(ctx, configCacheKey, current, 0)
}

// StoreAppConfig replaces the cached runtime config.
func StoreAppConfig(ctx context.Context, rdb *redis.Client, cfg *AppConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, configCacheKey, raw, 0).Err()
}
