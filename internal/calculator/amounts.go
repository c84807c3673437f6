// Package calculator holds the pure arithmetic of the treasury: expected
// collection amounts, rotation cycles, payout countdown targets and ledger totals.
package calculator

import (
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// PayoutBuffer is how far ahead a payout date must be to count as the next target.
const PayoutBuffer = 24 * time.Hour

// ExpectedAmount computes what a member owes for the given number of days.
// Based on: expected = days × dailyRate
func ExpectedAmount(days int, dailyRate models.Money) models.Money {
	return dailyRate.Times(days)
}

// CycleNumber returns the rotation cycle that contains at. Cycle 1 starts at
// cfg.StartDate; weekly cycles are 7 days, monthly cycles follow calendar months.
// Times before the start date belong to cycle 1.
func CycleNumber(cfg *models.GroupConfig, at time.Time) int {
	start := cfg.StartDate
	if start.IsZero() || !at.After(start) {
		return 1
	}

	switch cfg.Interval {
	case models.IntervalMonthly:
		months := (at.Year()-start.Year())*12 + int(at.Month()) - int(start.Month())
		// Not yet reached the anniversary within the current month
		if start.AddDate(0, months, 0).After(at) {
			months--
		}
		return months + 1
	default:
		weeks := int(at.Sub(start) / (7 * 24 * time.Hour))
		return weeks + 1
	}
}

// NextPayoutTarget returns the earliest payout date strictly more than
// PayoutBuffer after now, or nil if there is none.
func NextPayoutTarget(member *models.Member, now time.Time) *time.Time {
	threshold := now.Add(PayoutBuffer)
	var next *time.Time
	for i := range member.PayoutDates {
		d := member.PayoutDates[i]
		if !d.After(threshold) {
			continue
		}
		if next == nil || d.Before(*next) {
			next = &d
		}
	}
	return next
}
