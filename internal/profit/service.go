package profit

import (
	"fmt"
	"time"

	"github.com/sadlil/gologger"
)

var logger = gologger.GetLogger(gologger.CONSOLE, gologger.ColoredLog)

// Report summarizes one distribution run.
type Report struct {
	Day          time.Time
	PlansPaid    int
	ProfilesPaid int
	Total        float64
	ProfileIds   []uint
}

// Service runs the daily profit distribution. Now is injectable so the
// eligibility window can be pinned in tests.
type Service struct {
	Store Store
	Now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Run pays every plan that is owed a payout for the current UTC day. Plans
// are grouped by owner so each profile gets a single atomic credit. A failed
// profile is logged and skipped, the rest of the batch still runs.
func (s *Service) Run() (Report, error) {
	now := s.Now()
	report := Report{Day: Day(now)}
	plans, err := s.Store.ActivePlans()
	if err != nil {
		return report, err
	}
	last, err := s.Store.LastDistributions()
	if err != nil {
		return report, err
	}
	grouped := map[uint][]Payout{}
	order := []uint{}
	for _, plan := range plans {
		var lastPaid *time.Time
		if paid, ok := last[plan.Id]; ok {
			lastPaid = &paid
		}
		if !DueOn(plan.CreatedAt, lastPaid, now) {
			continue
		}
		if _, ok := grouped[plan.ProfileId]; !ok {
			order = append(order, plan.ProfileId)
		}
		grouped[plan.ProfileId] = append(grouped[plan.ProfileId], Payout{
			Plan:   plan,
			Amount: plan.DailyProfit(),
		})
	}
	for _, profileId := range order {
		payouts := grouped[profileId]
		err := s.Store.ApplyProfile(profileId, payouts, report.Day)
		if err != nil {
			logger.Error(fmt.Sprintf("Distribution for profile %d error: %s", profileId, err.Error()))
			continue
		}
		report.ProfilesPaid++
		report.PlansPaid += len(payouts)
		report.ProfileIds = append(report.ProfileIds, profileId)
		for _, payout := range payouts {
			report.Total += payout.Amount
		}
	}
	return report, nil
}
