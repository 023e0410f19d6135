package ton

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sadlil/gologger"
	"gorm.io/gorm"

	"stakevault/internal/ledger"
	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
)

var logger = gologger.GetLogger(gologger.CONSOLE, gologger.ColoredLog)

// purchaseTimeout is how long a pending purchase waits for its transfer
// before it expires.
const purchaseTimeout = time.Hour

// Watcher polls the platform wallet and settles pending coin purchases by
// memo match.
type Watcher struct {
	Db       *gorm.DB
	Rdb      *redis.Client
	Client   *Client
	Ledger   *ledger.Service
	Notify   *notify.Notifier
	Interval time.Duration
}

func NewWatcher(db *gorm.DB, rdb *redis.Client, notifier *notify.Notifier) *Watcher {
	interval := 30 * time.Second
	if raw, err := strconv.Atoi(os.Getenv("TON_POLL_SECONDS")); err == nil && raw > 0 {
		interval = time.Duration(raw) * time.Second
	}
	return &Watcher{
		Db:       db,
		Rdb:      rdb,
		Client:   NewClient(),
		Ledger:   ledger.NewService(ledger.NewStore(db)),
		Notify:   notifier,
		Interval: interval,
	}
}

func (w *Watcher) Run(ctx context.Context) {
	t := time.NewTicker(w.Interval)
	defer t.Stop()
	logger.Info("Purchase watcher started")
	for {
		select {
		case <-t.C:
			w.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep is one polling pass: expire stale purchases, then match the
// remaining pending ones against the latest wallet transfers.
func (w *Watcher) Sweep(ctx context.Context) {
	w.expireStale()

	var pending []stakeapi.CoinPurchase
	res := w.Db.Where("status = ?", stakeapi.PurchasePending).Find(&pending)
	if res.Error != nil {
		logger.Error(fmt.Sprint("Pending purchases read error: ", res.Error.Error()))
		return
	}
	if len(pending) == 0 {
		return
	}

	transfers, err := w.Client.IncomingTransfers(ctx, 100)
	if err != nil {
		logger.Error(fmt.Sprint("Wallet read error: ", err.Error()))
		return
	}
	byMemo := make(map[string]Transfer, len(transfers))
	for _, transfer := range transfers {
		byMemo[transfer.Memo] = transfer
	}

	cfg := stakeapi.LoadAppConfig(ctx, w.Rdb)
	for _, purchase := range pending {
		transfer, ok := byMemo[purchase.Memo]
		if !ok {
			continue
		}
		if transfer.Amount+0.001 < purchase.Amount {
			logger.Warn(fmt.Sprintf("Purchase %d underpaid: want %.4f got %.4f", purchase.Id, purchase.Amount, transfer.Amount))
			continue
		}
		err := w.Ledger.CreditPurchase(cfg, purchase, transfer.Hash)
		if err != nil {
			logger.Error(fmt.Sprintf("Purchase %d settle error: %s", purchase.Id, err.Error()))
			continue
		}
		w.Notify.SyncProfile(ctx, purchase.ProfileId)
		msg := fmt.Sprintf(
			"*TON purchase settled*\nProfile: %d\nAmount: %s TON",
			purchase.ProfileId,
			stakeapi.EscapeMarkdownV2(fmt.Sprintf("%.4f", purchase.Amount)),
		)
		w.Notify.Telegram(msg, "finance")
	}
}

func (w *Watcher) expireStale() {
	cutoff := time.Now().Add(-purchaseTimeout)
	res := w.Db.Model(&stakeapi.CoinPurchase{}).
		Where("status = ? AND created_at < ?", stakeapi.PurchasePending, cutoff).
		Update("status", stakeapi.PurchaseExpired)
	if res.Error != nil {
		logger.Error(fmt.Sprint("Purchase expiry error: ", res.Error.Error()))
		return
	}
	if res.RowsAffected > 0 {
		logger.Info(fmt.Sprintf("Expired %d stale purchases", res.RowsAffected))
	}
}
