package profit

import "time"

// Day truncates a timestamp to UTC midnight. Distribution rows are keyed by
// this value.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FirstDueAt is the earliest moment a plan can receive its first payout:
// 24 hours after the UTC midnight of its creation day.
func FirstDueAt(created time.Time) time.Time {
	return Day(created).Add(24 * time.Hour)
}

// DueOn reports whether a plan is owed a payout at the given moment. A plan
// is due once its first payout time has passed and it has not yet been paid
// for the current UTC calendar day.
func DueOn(created time.Time, last *time.Time, now time.Time) bool {
	if now.Before(FirstDueAt(created)) {
		return false
	}
	if last == nil {
		return true
	}
	return Day(now).After(Day(*last))
}
