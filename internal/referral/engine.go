package referral

import (
	"context"
	"fmt"

	"github.com/sadlil/gologger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
)

var logger = gologger.GetLogger(gologger.CONSOLE, gologger.ColoredLog)

// Engine pays multi-level commissions up the sponsor chain. All lookups go
// through the same upline walk, so every trigger sees the same ancestry.
type Engine struct {
	Db     *gorm.DB
	Notify *notify.Notifier
}

func NewEngine(db *gorm.DB, notifier *notify.Notifier) *Engine {
	return &Engine{Db: db, Notify: notifier}
}

func (e *Engine) lookup(referralCode string) (stakeapi.Profile, bool) {
	var sponsor stakeapi.Profile
	res := e.Db.Where("referral_code = ?", referralCode).First(&sponsor)
	return sponsor, res.RowsAffected == 1
}

// PayCommissions credits every upline ancestor of source for a gross base
// amount. Each level is one transaction: lock the ancestor row, credit the
// main wallet, record the commission and the ledger row. A failed level is
// logged and skipped so the remaining ancestors still get paid.
func (e *Engine) PayCommissions(ctx context.Context, cfg *stakeapi.AppConfig, source stakeapi.Profile, base float64, referenceId string) {
	chain := Upline(source, e.lookup)
	for i, ancestor := range chain {
		level := uint(i + 1)
		amount := CommissionFor(base, level, cfg.Settings.Ref)
		if amount <= 0 {
			continue
		}
		err := e.payLevel(source, ancestor.Id, level, base, amount, referenceId)
		if err != nil {
			logger.Error(fmt.Sprintf("Commission lvl %d for profile %d error: %s", level, ancestor.Id, err.Error()))
			continue
		}
		e.Notify.SyncProfile(ctx, ancestor.Id)
	}
}

func (e *Engine) payLevel(source stakeapi.Profile, referrerId uint, level uint, base float64, amount float64, referenceId string) error {
	tx := e.Db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()
	var referrer stakeapi.Profile
	res := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", referrerId).
		First(&referrer)
	if res.Error != nil {
		return res.Error
	}
	referrer.MainWalletBalance += amount
	referrer.TotalEarned += amount
	if res = tx.Save(&referrer); res.Error != nil {
		return res.Error
	}
	commission := stakeapi.ReferralCommission{
		ReferrerId:       referrer.Id,
		ReferredId:       source.Id,
		Lvl:              level,
		BaseAmount:       base,
		CommissionAmount: amount,
		ReferenceId:      referenceId,
	}
	if res = tx.Create(&commission); res.Error != nil {
		return res.Error
	}
	ledger := stakeapi.Transaction{
		ProfileId:   referrer.Id,
		AuthorId:    source.Id,
		Type:        stakeapi.TxReferralBonus,
		Status:      stakeapi.TxStatusCompleted,
		Amount:      amount,
		Description: fmt.Sprintf("Level %d referral bonus from %s", level, source.Email),
		ReferenceId: referenceId,
	}
	if res = tx.Create(&ledger); res.Error != nil {
		return res.Error
	}
	return tx.Commit().Error
}
