package profit

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"stakevault/internal/notify"
	"stakevault/internal/stakeapi"
)

const TypeDistribute = "profit:distribute"

func NewDistributeTask() *asynq.Task {
	return asynq.NewTask(TypeDistribute, nil, asynq.Queue("profit"), asynq.MaxRetry(0))
}

// NewDistributeHandler wires the distribution run into the job runner.
func NewDistributeHandler(db *gorm.DB, notifier *notify.Notifier) asynq.HandlerFunc {
	service := NewService(NewStore(db))
	return func(ctx context.Context, t *asynq.Task) error {
		report, err := service.Run()
		if err != nil {
			return err
		}
		for _, profileId := range report.ProfileIds {
			notifier.SyncProfile(ctx, profileId)
		}
		if report.PlansPaid > 0 {
			msg := fmt.Sprintf(
				"*Daily profit run*\nPlans paid: %d\nProfiles: %d\nTotal: %s USD",
				report.PlansPaid,
				report.ProfilesPaid,
				stakeapi.EscapeMarkdownV2(fmt.Sprintf("%.2f", report.Total)),
			)
			notifier.Telegram(msg, "finance")
		}
		return nil
	}
}
