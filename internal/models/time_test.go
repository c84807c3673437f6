package models

import (
	"errors"
	"testing"
	"time"
)

func TestCheckTime(t *testing.T) {
	tests := []struct {
		name    string
		t       time.Time
		wantErr bool
	}{
		{"lower bound", MinTime, false},
		{"just below lower bound", MinTime.Add(-time.Nanosecond), true},
		{"typical", time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC), false},
		{"just below upper bound", MaxTime.Add(-time.Nanosecond), false},
		{"upper bound", MaxTime, true},
		{"past nanosecond range", time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"zero", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTime("payout date", tt.t)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("CheckTime() error = %v, want ErrValidation", err)
				}
			} else if err != nil {
				t.Errorf("CheckTime() unexpected error = %v", err)
			}
		})
	}
}
