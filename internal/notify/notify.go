package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sadlil/gologger"

	"stakevault/internal/stakeapi"
	"stakevault/internal/worker"
)

var logger = gologger.GetLogger(gologger.CONSOLE, gologger.ColoredLog)

// Notifier fans out side-channel notifications: Telegram messages to the
// ops channels and redis publishes that wake up websocket listeners.
type Notifier struct {
	Rdb  *redis.Client
	Pool *worker.Pool
}

func New(rdb *redis.Client, pool *worker.Pool) *Notifier {
	return &Notifier{Rdb: rdb, Pool: pool}
}

type telegramTask struct {
	msg  string
	chat string
}

func (t telegramTask) Execute() {
	err := stakeapi.SendTelegramMessage(t.msg, t.chat)
	if err != nil {
		logger.Error(fmt.Sprint("Telegram send error: ", err.Error()))
	}
}

// Telegram queues an ops message without blocking the request.
func (n *Notifier) Telegram(msg string, chat string) {
	if n == nil || n.Pool == nil {
		return
	}
	n.Pool.Exec(telegramTask{msg: msg, chat: chat})
}

// SyncProfile publishes a balance-sync event so an open websocket for this
// profile refreshes its state.
func (n *Notifier) SyncProfile(ctx context.Context, profileId uint) {
	if n == nil || n.Rdb == nil {
		return
	}
	channel := fmt.Sprintf("notification_ch@%d", profileId)
	err := n.Rdb.Publish(ctx, channel, "sync").Err()
	if err != nil {
		logger.Error(fmt.Sprint("Redis publish error: ", err.Error()))
	}
}
