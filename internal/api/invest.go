package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"stakevault/internal/ledger"
	"stakevault/internal/notify"
	"stakevault/internal/referral"
	"stakevault/internal/stakeapi"
)

type investParams struct {
	Amount float64 `json:"amount" binding:"required"`
}

// Invest opens a plan from fund wallet balance and pays the upline
// commissions on the invested amount.
func Invest(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var iParams investParams
	if err := c.ShouldBindJSON(&iParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg := stakeapi.LoadAppConfig(c, app.Rdb)
	service := ledger.NewService(ledger.NewStore(app.Db))
	plan, err := service.Invest(cfg, profile.Id, iParams.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	engine := referral.NewEngine(app.Db, notifier)
	engine.PayCommissions(c, cfg, profile, plan.InvestmentAmount, fmt.Sprintf("plan:%d", plan.Id))
	notifier.SyncProfile(c, profile.Id)
	msg := fmt.Sprintf(
		"*New investment*\nProfile: %d\nPlan: %s\nAmount: %s USD",
		profile.Id,
		stakeapi.EscapeMarkdownV2(plan.PlanName),
		stakeapi.EscapeMarkdownV2(fmt.Sprintf("%.2f", plan.InvestmentAmount)),
	)
	notifier.Telegram(msg, "finance")
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// GetPlans lists the profile's plans, active first.
func GetPlans(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var plans []stakeapi.InvestmentPlan
	app.Db.Where("profile_id = ?", profile.Id).
		Order("is_active DESC, created_at DESC").
		Find(&plans)
	c.JSON(http.StatusOK, gin.H{"results": plans})
}

// GetPlanPresets exposes the current plan tiers and limits.
func GetPlanPresets(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	cfg := stakeapi.LoadAppConfig(c, app.Rdb)
	c.JSON(http.StatusOK, gin.H{
		"plans":  cfg.Settings.Plans,
		"limits": cfg.Settings.Limits,
	})
}
