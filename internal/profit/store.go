package profit

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stakevault/internal/stakeapi"
)

// Payout is one plan's credit for one distribution day.
type Payout struct {
	Plan   stakeapi.InvestmentPlan
	Amount float64
}

// Store is the persistence surface of the distribution run.
type Store interface {
	ActivePlans() ([]stakeapi.InvestmentPlan, error)
	LastDistributions() (map[uint]time.Time, error)
	ApplyProfile(profileId uint, payouts []Payout, day time.Time) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ActivePlans() ([]stakeapi.InvestmentPlan, error) {
	var plans []stakeapi.InvestmentPlan
	res := s.db.Where("is_active = ?", true).Order("profile_id, id").Find(&plans)
	return plans, res.Error
}

func (s *gormStore) LastDistributions() (map[uint]time.Time, error) {
	type lastRow struct {
		PlanId uint
		Last   time.Time
	}
	var rows []lastRow
	res := s.db.Model(&stakeapi.ProfitDistribution{}).
		Select("plan_id, MAX(date) AS last").
		Group("plan_id").
		Scan(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	last := make(map[uint]time.Time, len(rows))
	for _, row := range rows {
		last[row.PlanId] = row.Last
	}
	return last, nil
}

// ApplyProfile credits one profile's payouts in a single transaction: the
// distribution markers, the plan accumulators, one wallet credit and one
// ledger row per plan. The unique (plan_id, date) index makes a concurrent
// duplicate run fail here and roll the whole profile back.
func (s *gormStore) ApplyProfile(profileId uint, payouts []Payout, day time.Time) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()
	var profile stakeapi.Profile
	res := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", profileId).
		First(&profile)
	if res.Error != nil {
		return res.Error
	}
	total := 0.0
	for _, payout := range payouts {
		dist := stakeapi.ProfitDistribution{
			PlanId: payout.Plan.Id,
			Date:   day,
			Amount: payout.Amount,
		}
		if res = tx.Create(&dist); res.Error != nil {
			return res.Error
		}
		res = tx.Model(&stakeapi.InvestmentPlan{}).
			Where("id = ?", payout.Plan.Id).
			Update("total_profit_earned", gorm.Expr("total_profit_earned + ?", payout.Amount))
		if res.Error != nil {
			return res.Error
		}
		ledger := stakeapi.Transaction{
			ProfileId:   profileId,
			AuthorId:    profileId,
			Type:        stakeapi.TxProfit,
			Status:      stakeapi.TxStatusCompleted,
			Amount:      payout.Amount,
			Description: fmt.Sprintf("Daily profit for plan #%d (%s)", payout.Plan.Id, payout.Plan.PlanName),
			ReferenceId: fmt.Sprintf("plan:%d:%s", payout.Plan.Id, day.Format("2006-01-02")),
		}
		if res = tx.Create(&ledger); res.Error != nil {
			return res.Error
		}
		total += payout.Amount
	}
	profile.MainWalletBalance = stakeapi.RoundFloat(profile.MainWalletBalance+total, 2)
	profile.TotalEarned = stakeapi.RoundFloat(profile.TotalEarned+total, 2)
	if res = tx.Save(&profile); res.Error != nil {
		return res.Error
	}
	return tx.Commit().Error
}
