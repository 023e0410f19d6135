package server

import (
	"fmt"
	"log"
	"os"

	"github.com/hibiken/asynq"

	"stakevault/internal/notify"
	"stakevault/internal/profit"
	"stakevault/internal/stakeapi"
	"stakevault/internal/worker"
)

// JobsInit runs the background job runner: the asynq worker consuming the
// profit queue plus the scheduler that enqueues the daily distribution.
func JobsInit(config Config) {
	app := stakeapi.InitJobs()
	pool := worker.NewPool(config.WorkerSpeed, config.WorkerQueue)
	notifier := notify.New(app.Rdb, pool)

	mux := asynq.NewServeMux()
	mux.HandleFunc(profit.TypeDistribute, profit.NewDistributeHandler(app.Db, notifier))

	cron := os.Getenv("DISTRIBUTE_CRON")
	if cron == "" {
		cron = "5 0 * * *" // daily, just past UTC midnight
	}
	entryId, err := app.Sch.Register(cron, profit.NewDistributeTask())
	if err != nil {
		log.Fatal("Failed to register distribution schedule: ", err)
	}
	fmt.Println("[ StakeVault jobs: distribution scheduled as", entryId, "]")

	go func() {
		if err := app.Sch.Run(); err != nil {
			log.Fatal("Failed to run scheduler: ", err)
		}
	}()
	if err := app.Aqs.Run(mux); err != nil {
		log.Fatal("Failed to run job server: ", err)
	}
}
