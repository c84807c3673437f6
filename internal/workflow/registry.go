package workflow

import (
	"fmt"
	"sort"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// SelectDate adds date to the member's payout dates. Re-selecting a date is a
// no-op. It reports whether the member changed.
func SelectDate(m *models.Member, date, now time.Time) (bool, error) {
	if m.DatesLocked {
		return false, fmt.Errorf("%w: payout dates of member %s are locked", models.ErrInvalidStateTransition, m.ID)
	}
	if m.HasPayoutDate(date) {
		return false, nil
	}
	if len(m.PayoutDates) >= models.MaxPayoutDates {
		return false, fmt.Errorf("%w: member %s already selected %d dates",
			models.ErrCapacityExceeded, m.ID, models.MaxPayoutDates)
	}
	if date.Before(now) {
		return false, fmt.Errorf("%w: payout date %s is in the past", models.ErrValidation, date.Format(time.RFC3339))
	}
	if err := models.CheckTime("payout date", date); err != nil {
		return false, err
	}

	m.PayoutDates = append(m.PayoutDates, date)
	sort.Slice(m.PayoutDates, func(i, j int) bool {
		return m.PayoutDates[i].Before(m.PayoutDates[j])
	})
	return true, nil
}

// DeselectDate removes date from the member's payout dates. Past dates may be
// removed while the selection is open.
func DeselectDate(m *models.Member, date time.Time) (bool, error) {
	if m.DatesLocked {
		return false, fmt.Errorf("%w: payout dates of member %s are locked", models.ErrInvalidStateTransition, m.ID)
	}
	for i, d := range m.PayoutDates {
		if d.Equal(date) {
			m.PayoutDates = append(m.PayoutDates[:i:i], m.PayoutDates[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// CommitDates locks a complete selection. Only an admin unlock reopens it.
func CommitDates(m *models.Member) error {
	if m.DatesLocked {
		return fmt.Errorf("%w: payout dates of member %s are already locked", models.ErrInvalidStateTransition, m.ID)
	}
	if len(m.PayoutDates) != models.MaxPayoutDates {
		return fmt.Errorf("%w: %d of %d payout dates selected",
			models.ErrIncompleteSelection, len(m.PayoutDates), models.MaxPayoutDates)
	}
	m.DatesLocked = true
	return nil
}

// UnlockDates reopens the selection and keeps the dates. It reports whether
// the member changed.
func UnlockDates(m *models.Member) bool {
	if !m.DatesLocked {
		return false
	}
	m.DatesLocked = false
	return true
}
