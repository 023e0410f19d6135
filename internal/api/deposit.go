package api

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stakevault/internal/ledger"
	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
)

type depositParams struct {
	Amount float64 `json:"amount" binding:"required"`
	Method string  `json:"method" binding:"required" validate:"required,max=20"`
	TxHash string  `json:"tx_hash" validate:"max=100"`
}

type purchaseParams struct {
	Amount float64 `json:"amount" binding:"required"` // TON
}

// RequestDeposit files a manual top-up for admin review.
func RequestDeposit(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var dParams depositParams
	if err := c.ShouldBindJSON(&dParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg := stakeapi.LoadAppConfig(c, app.Rdb)
	service := ledger.NewService(ledger.NewStore(app.Db))
	req, err := service.RequestDeposit(cfg, profile, dParams.Amount, dParams.Method, dParams.TxHash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := fmt.Sprintf(
		"*Deposit requested*\nProfile: %d\nAmount: %s USD\nMethod: %s",
		profile.Id,
		stakeapi.EscapeMarkdownV2(fmt.Sprintf("%.2f", req.Amount)),
		stakeapi.EscapeMarkdownV2(req.Method),
	)
	notifier.Telegram(msg, "finance")
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// GetDeposits lists the profile's own deposit requests.
func GetDeposits(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var requests []stakeapi.DepositRequest
	app.Db.Where("profile_id = ?", profile.Id).
		Order("created_at DESC").
		Find(&requests)
	c.JSON(http.StatusOK, gin.H{"results": requests})
}

// CreatePurchase opens an automatic TON top-up: the client transfers the
// amount to the platform wallet with the returned memo, the watcher credits
// the fund wallet once the transfer lands.
func CreatePurchase(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var pParams purchaseParams
	if err := c.ShouldBindJSON(&pParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if pParams.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	wallet := os.Getenv("TON_WALLET_ADDRESS")
	if wallet == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "purchases unavailable"})
		return
	}
	memo := "sv-" + strings.Split(uuid.NewString(), "-")[0]
	purchase := stakeapi.CoinPurchase{
		ProfileId: profile.Id,
		Amount:    pParams.Amount,
		Memo:      memo,
		Address:   wallet,
		Status:    stakeapi.PurchasePending,
	}
	res := app.Db.Create(&purchase)
	if res.Error != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": res.Error.Error()})
		return
	}
	cfg := stakeapi.LoadAppConfig(c, app.Rdb)
	c.JSON(http.StatusOK, gin.H{
		"purchase":     purchase,
		"ton_usd_rate": cfg.TonUsdRate,
	})
}

// GetPurchase polls one purchase, so the client can wait for settlement.
func GetPurchase(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var purchase stakeapi.CoinPurchase
	res := app.Db.Where("id = ? AND profile_id = ?", c.Param("id"), profile.Id).First(&purchase)
	if res.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}
