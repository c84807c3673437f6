package models

import (
	"fmt"
	"time"
)

// Instants outside [MinTime, MaxTime) are rejected at the edges. The stores
// keep times as Unix nanoseconds, which cannot represent years past 2262.
var (
	MinTime = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

// CheckTime returns a validation error naming field when t is out of range.
func CheckTime(field string, t time.Time) error {
	if t.Before(MinTime) || !t.Before(MaxTime) {
		return fmt.Errorf("%w: %s %s is outside %d-%d",
			ErrValidation, field, t.Format(time.RFC3339), MinTime.Year(), MaxTime.Year()-1)
	}
	return nil
}
