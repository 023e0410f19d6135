package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stakevault/internal/ledger"
	"stakevault/internal/notify"
	"stakevault/internal/profit"
	"stakevault/internal/referral"
	"stakevault/internal/stakeapi"
)

type reviewParams struct {
	Comment string `json:"comment" validate:"max=500"`
}

type adjustParams struct {
	ProfileId uint    `json:"profile_id" binding:"required"`
	Wallet    string  `json:"wallet" binding:"required"` // "main" or "fund"
	Amount    float64 `json:"amount" binding:"required"`
	Reason    string  `json:"reason" validate:"max=500"`
}

func adminProfile(c *gin.Context) stakeapi.Profile {
	return c.MustGet("admin").(stakeapi.Profile)
}

func requestId(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ListDeposits shows deposit requests, pending first unless filtered.
func ListDeposits(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	var requests []stakeapi.DepositRequest
	query := app.Db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Find(&requests)
	c.JSON(http.StatusOK, gin.H{"results": requests})
}

// ApproveDeposit credits the fund wallet and pays the upline commissions on
// the deposited amount.
func ApproveDeposit(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	admin := adminProfile(c)
	id, ok := requestId(c)
	if !ok {
		return
	}
	var rParams reviewParams
	_ = c.ShouldBindJSON(&rParams)
	service := ledger.NewService(ledger.NewStore(app.Db))
	req, err := service.ApproveDeposit(admin.Id, id, rParams.Comment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var depositor stakeapi.Profile
	if res := app.Db.Where("id = ?", req.ProfileId).First(&depositor); res.RowsAffected == 1 {
		cfg := stakeapi.LoadAppConfig(c, app.Rdb)
		engine := referral.NewEngine(app.Db, notifier)
		engine.PayCommissions(c, cfg, depositor, req.Amount, fmt.Sprintf("deposit:%d", req.Id))
	}
	notifier.SyncProfile(c, req.ProfileId)
	msg := fmt.Sprintf(
		"*Deposit approved*\nRequest: %d\nProfile: %d\nAmount: %s USD",
		req.Id,
		req.ProfileId,
		stakeapi.EscapeMarkdownV2(fmt.Sprintf("%.2f", req.Amount)),
	)
	notifier.Telegram(msg, "finance")
	c.JSON(http.StatusOK, gin.H{"request": req})
}

func RejectDeposit(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	admin := adminProfile(c)
	id, ok := requestId(c)
	if !ok {
		return
	}
	var rParams reviewParams
	_ = c.ShouldBindJSON(&rParams)
	service := ledger.NewService(ledger.NewStore(app.Db))
	req, err := service.RejectDeposit(admin.Id, id, rParams.Comment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	notifier.SyncProfile(c, req.ProfileId)
	c.JSON(http.StatusOK, gin.H{"request": req})
}

func ListWithdrawals(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	var requests []stakeapi.WithdrawalRequest
	query := app.Db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Find(&requests)
	c.JSON(http.StatusOK, gin.H{"results": requests})
}

// ApproveWithdrawal debits the main wallet. Fails when the balance dropped
// below the requested amount since the request was filed.
func ApproveWithdrawal(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	admin := adminProfile(c)
	id, ok := requestId(c)
	if !ok {
		return
	}
	var rParams reviewParams
	_ = c.ShouldBindJSON(&rParams)
	service := ledger.NewService(ledger.NewStore(app.Db))
	req, err := service.ApproveWithdrawal(admin.Id, id, rParams.Comment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	notifier.SyncProfile(c, req.ProfileId)
	msg := fmt.Sprintf(
		"*Withdrawal approved*\nRequest: %d\nProfile: %d\nAmount: %s USD",
		req.Id,
		req.ProfileId,
		stakeapi.EscapeMarkdownV2(fmt.Sprintf("%.2f", req.Amount)),
	)
	notifier.Telegram(msg, "finance")
	c.JSON(http.StatusOK, gin.H{"request": req})
}

func RejectWithdrawal(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	admin := adminProfile(c)
	id, ok := requestId(c)
	if !ok {
		return
	}
	var rParams reviewParams
	_ = c.ShouldBindJSON(&rParams)
	service := ledger.NewService(ledger.NewStore(app.Db))
	req, err := service.RejectWithdrawal(admin.Id, id, rParams.Comment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	notifier.SyncProfile(c, req.ProfileId)
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// Adjust is a manual wallet correction, recorded on the ledger.
func Adjust(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	admin := adminProfile(c)
	var aParams adjustParams
	if err := c.ShouldBindJSON(&aParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	service := ledger.NewService(ledger.NewStore(app.Db))
	err := service.Adjust(admin.Id, aParams.ProfileId, aParams.Wallet, aParams.Amount, aParams.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	notifier.SyncProfile(c, aParams.ProfileId)
	c.JSON(http.StatusOK, gin.H{})
}

// SetBlocked toggles a profile's blocked flag.
func SetBlocked(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	id, ok := requestId(c)
	if !ok {
		return
	}
	var bParams struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.ShouldBindJSON(&bParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := app.Db.Model(&stakeapi.Profile{}).
		Where("id = ?", id).
		Update("is_blocked", bParams.Blocked)
	if res.Error != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// GetProfileDetails shows one profile with its plans and referral stats.
func GetProfileDetails(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	id, ok := requestId(c)
	if !ok {
		return
	}
	var profile stakeapi.Profile
	res := app.Db.Where("id = ?", id).First(&profile)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, nil)
		return
	}
	var plans []stakeapi.InvestmentPlan
	app.Db.Where("profile_id = ?", profile.Id).Order("created_at DESC").Find(&plans)
	uplineChain := referral.Upline(profile, func(code string) (stakeapi.Profile, bool) {
		var sponsor stakeapi.Profile
		r := app.Db.Where("referral_code = ?", code).First(&sponsor)
		return sponsor, r.RowsAffected == 1
	})
	upline := make([]uint, 0, len(uplineChain))
	for _, ancestor := range uplineChain {
		upline = append(upline, ancestor.Id)
	}
	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"plans":   plans,
		"stats":   stakeapi.GetRefStats(app.Db, profile),
		"upline":  upline,
	})
}

// TriggerDistribution enqueues an out-of-schedule profit run.
func TriggerDistribution(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	info, err := app.Aqc.Enqueue(profit.NewDistributeTask())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": info.ID, "queue": info.Queue})
}

// GetDistributionStatus polls a queued run by task id.
func GetDistributionStatus(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	info, err := app.Aqi.GetTaskInfo("profit", c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id":      info.ID,
		"state":        info.State.String(),
		"completed_at": info.CompletedAt,
	})
}

// GetConfig and UpdateConfig manage the cached runtime settings.
func GetConfig(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	c.JSON(http.StatusOK, stakeapi.LoadAppConfig(c, app.Rdb))
}

func UpdateConfig(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	var cfg stakeapi.AppConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := stakeapi.StoreAppConfig(c, app.Rdb, &cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
