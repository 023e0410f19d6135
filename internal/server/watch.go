package server

import (
	"context"

	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
	"stakevault/internal/ton"
	"stakevault/internal/worker"
)

// WatchInit runs the TON purchase watcher until the process dies.
func WatchInit(config Config) {
	app := stakeapi.InitWatch()
	pool := worker.NewPool(config.WorkerSpeed, config.WorkerQueue)
	notifier := notify.New(app.Rdb, pool)
	watcher := ton.NewWatcher(app.Db, app.Rdb, notifier)
	watcher.Run(context.Background())
}
