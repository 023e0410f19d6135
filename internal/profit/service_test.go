package profit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakevault/internal/stakeapi"
)

type applied struct {
	profileId uint
	payouts   []Payout
	day       time.Time
}

type fakeStore struct {
	plans   []stakeapi.InvestmentPlan
	last    map[uint]time.Time
	applies []applied
	failFor map[uint]error
}

func (f *fakeStore) ActivePlans() ([]stakeapi.InvestmentPlan, error) {
	return f.plans, nil
}

func (f *fakeStore) LastDistributions() (map[uint]time.Time, error) {
	if f.last == nil {
		return map[uint]time.Time{}, nil
	}
	return f.last, nil
}

func (f *fakeStore) ApplyProfile(profileId uint, payouts []Payout, day time.Time) error {
	if err := f.failFor[profileId]; err != nil {
		return err
	}
	f.applies = append(f.applies, applied{profileId: profileId, payouts: payouts, day: day})
	if f.last == nil {
		f.last = map[uint]time.Time{}
	}
	for _, payout := range payouts {
		f.last[payout.Plan.Id] = day
	}
	return nil
}

func planAt(id, profileId uint, amount, pct float64, created string) stakeapi.InvestmentPlan {
	return stakeapi.InvestmentPlan{
		Id:               id,
		CreatedAt:        ts(created),
		ProfileId:        profileId,
		InvestmentAmount: amount,
		DailyPercentage:  pct,
		IsActive:         true,
	}
}

func pinned(value string) func() time.Time {
	return func() time.Time { return ts(value) }
}

func TestRunPaysDailyPercentage(t *testing.T) {
	store := &fakeStore{plans: []stakeapi.InvestmentPlan{
		planAt(1, 7, 1000, 3.0, "2026-08-20T10:00:00Z"),
	}}
	service := NewService(store)
	service.Now = pinned("2026-08-25T00:10:00Z")

	report, err := service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.PlansPaid)
	assert.Equal(t, 1, report.ProfilesPaid)
	assert.Equal(t, 30.00, report.Total)
	require.Len(t, store.applies, 1)
	assert.Equal(t, uint(7), store.applies[0].profileId)
	assert.Equal(t, ts("2026-08-25T00:00:00Z"), store.applies[0].day)
}

func TestRunIsIdempotentWithinOneDay(t *testing.T) {
	store := &fakeStore{plans: []stakeapi.InvestmentPlan{
		planAt(1, 7, 1000, 3.0, "2026-08-20T10:00:00Z"),
	}}
	service := NewService(store)
	service.Now = pinned("2026-08-25T06:00:00Z")

	first, err := service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, first.PlansPaid)

	second, err := service.Run()
	require.NoError(t, err)
	assert.Zero(t, second.PlansPaid)
	assert.Zero(t, second.Total)
	assert.Len(t, store.applies, 1)
}

func TestRunSkipsPlansInsideFirstDay(t *testing.T) {
	store := &fakeStore{plans: []stakeapi.InvestmentPlan{
		planAt(1, 7, 500, 2.0, "2026-08-25T08:00:00Z"),
	}}
	service := NewService(store)
	service.Now = pinned("2026-08-25T23:00:00Z")

	report, err := service.Run()
	require.NoError(t, err)
	assert.Zero(t, report.PlansPaid)
	assert.Empty(t, store.applies)
}

func TestRunGroupsPlansPerProfile(t *testing.T) {
	store := &fakeStore{plans: []stakeapi.InvestmentPlan{
		planAt(1, 7, 1000, 3.0, "2026-08-20T10:00:00Z"),
		planAt(2, 7, 200, 1.5, "2026-08-21T10:00:00Z"),
		planAt(3, 9, 100, 1.5, "2026-08-22T10:00:00Z"),
	}}
	service := NewService(store)
	service.Now = pinned("2026-08-25T01:00:00Z")

	report, err := service.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, report.PlansPaid)
	assert.Equal(t, 2, report.ProfilesPaid)
	assert.Equal(t, 34.5, report.Total)
	require.Len(t, store.applies, 2)
	assert.Len(t, store.applies[0].payouts, 2)
	assert.Len(t, store.applies[1].payouts, 1)
}

func TestRunContinuesPastFailedProfile(t *testing.T) {
	store := &fakeStore{
		plans: []stakeapi.InvestmentPlan{
			planAt(1, 7, 1000, 3.0, "2026-08-20T10:00:00Z"),
			planAt(2, 9, 100, 1.5, "2026-08-20T10:00:00Z"),
		},
		failFor: map[uint]error{7: errors.New("deadlock")},
	}
	service := NewService(store)
	service.Now = pinned("2026-08-25T01:00:00Z")

	report, err := service.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.PlansPaid)
	assert.Equal(t, []uint{9}, report.ProfileIds)
	assert.Equal(t, 1.5, report.Total)
}
