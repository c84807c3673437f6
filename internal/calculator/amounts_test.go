package calculator

import (
	"testing"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

func TestExpectedAmount(t *testing.T) {
	tests := []struct {
		name string
		days int
		rate models.Money
		want models.Money
	}{
		{name: "three days at 1000", days: 3, rate: 1000, want: 3000},
		{name: "single day", days: 1, rate: 1500, want: 1500},
		{name: "no days", days: 0, rate: 1000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpectedAmount(tt.days, tt.rate); got != tt.want {
				t.Errorf("ExpectedAmount(%d, %d) = %d, want %d", tt.days, tt.rate, got, tt.want)
			}
		})
	}
}

func TestCycleNumber(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		interval models.Interval
		at       time.Time
		want     int
	}{
		{name: "before start", interval: models.IntervalWeekly, at: start.Add(-time.Hour), want: 1},
		{name: "at start", interval: models.IntervalWeekly, at: start, want: 1},
		{name: "day six of week one", interval: models.IntervalWeekly, at: start.Add(6 * 24 * time.Hour), want: 1},
		{name: "exactly one week later", interval: models.IntervalWeekly, at: start.Add(7 * 24 * time.Hour), want: 2},
		{name: "mid second month", interval: models.IntervalMonthly, at: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), want: 2},
		{name: "before monthly anniversary", interval: models.IntervalMonthly, at: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC), want: 2},
		{name: "on monthly anniversary", interval: models.IntervalMonthly, at: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &models.GroupConfig{StartDate: start, Interval: tt.interval, DailyRate: 1000}
			if got := CycleNumber(cfg, tt.at); got != tt.want {
				t.Errorf("CycleNumber() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextPayoutTarget(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dates []time.Time
		want  *time.Time
	}{
		{name: "no dates", dates: nil, want: nil},
		{
			name:  "all dates in the past",
			dates: []time.Time{now.Add(-48 * time.Hour), now.Add(-time.Hour)},
			want:  nil,
		},
		{
			name:  "date within the 24h buffer is skipped",
			dates: []time.Time{now.Add(23 * time.Hour), now.Add(72 * time.Hour)},
			want:  ptr(now.Add(72 * time.Hour)),
		},
		{
			name:  "exactly 24h ahead is not strictly beyond the buffer",
			dates: []time.Time{now.Add(24 * time.Hour)},
			want:  nil,
		},
		{
			name:  "earliest qualifying date wins regardless of order",
			dates: []time.Time{now.Add(10 * 24 * time.Hour), now.Add(3 * 24 * time.Hour), now.Add(5 * 24 * time.Hour)},
			want:  ptr(now.Add(3 * 24 * time.Hour)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPayoutTarget(&models.Member{PayoutDates: tt.dates}, now)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("NextPayoutTarget() = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("NextPayoutTarget() = nil, want %v", *tt.want)
			case tt.want != nil && !got.Equal(*tt.want):
				t.Errorf("NextPayoutTarget() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
