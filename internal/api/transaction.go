package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stakevault/internal/ledger"
	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
)

type withdrawParams struct {
	Amount  float64 `json:"amount" binding:"required"`
	Address string  `json:"address" binding:"required" validate:"required,max=100"`
}

type PaginatedTx struct {
	Count    int                    `json:"count"`
	Next     string                 `json:"next"`
	Previous string                 `json:"previous"`
	Results  []stakeapi.Transaction `json:"results"`
}

// GetTransactionsList returns the profile's ledger feed, newest first.
func GetTransactionsList(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if size < 1 || size > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.New("maximum size is 100").Error()})
		return
	}
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var transactions []stakeapi.Transaction
	app.Db.Where("profile_id = ?", profile.Id).
		Order("created_at DESC, id DESC").
		Find(&transactions)
	if txType := c.Query("type"); txType != "" {
		filtered := make([]stakeapi.Transaction, 0, len(transactions))
		for _, transaction := range transactions {
			if transaction.Type == txType {
				filtered = append(filtered, transaction)
			}
		}
		transactions = filtered
	}
	c.JSON(http.StatusOK, paginateTx(transactions, page, size))
}

func paginateTx(transactions []stakeapi.Transaction, page int, size int) (paginatedTx PaginatedTx) {
	paginatedTx.Results = []stakeapi.Transaction{}
	paginatedTx.Count = len(transactions)
	feedLen := len(transactions)
	i := (page - 1) * size
	if feedLen <= i {
		return paginatedTx
	}
	if feedLen > page*size {
		paginatedTx.Next = fmt.Sprintf("/transactions/?page=%d&size=%d", page+1, size)
	}
	if page > 1 {
		paginatedTx.Previous = fmt.Sprintf("/transactions/?page=%d&size=%d", page-1, size)
	}
	j := i + size
	if j > feedLen {
		j = feedLen
	}
	paginatedTx.Results = transactions[i:j]
	return paginatedTx
}

// Withdraw files a payout request for admin review. Balance stays untouched
// until approval.
func Withdraw(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	notifier := c.MustGet("notify").(*notify.Notifier)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var wParams withdrawParams
	if err := c.ShouldBindJSON(&wParams); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg := stakeapi.LoadAppConfig(c, app.Rdb)
	service := ledger.NewService(ledger.NewStore(app.Db))
	req, err := service.RequestWithdrawal(cfg, profile, wParams.Amount, wParams.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg := fmt.Sprintf(
		"*Withdrawal requested*\nProfile: %d\nAmount: %s USD\nAddress: %s",
		profile.Id,
		stakeapi.EscapeMarkdownV2(fmt.Sprintf("%.2f", req.Amount)),
		stakeapi.EscapeMarkdownV2(req.Address),
	)
	notifier.Telegram(msg, "finance")
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// GetWithdrawals lists the profile's own payout requests.
func GetWithdrawals(c *gin.Context) {
	app := c.MustGet("app").(*stakeapi.App)
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var requests []stakeapi.WithdrawalRequest
	app.Db.Where("profile_id = ?", profile.Id).
		Order("created_at DESC").
		Find(&requests)
	c.JSON(http.StatusOK, gin.H{"results": requests})
}
