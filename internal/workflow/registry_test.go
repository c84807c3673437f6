package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

func day(n int) time.Time {
	return testNow.Add(time.Duration(n) * 24 * time.Hour)
}

func memberWithDates(dates ...time.Time) *models.Member {
	return &models.Member{ID: "2", Name: "Alice Mutoni", Role: models.RoleMember, PayoutRank: 2, PayoutDates: dates}
}

func TestSelectDate(t *testing.T) {
	tests := []struct {
		name        string
		member      *models.Member
		date        time.Time
		wantErr     error
		wantChanged bool
		wantCount   int
	}{
		{name: "first future date", member: memberWithDates(), date: day(5), wantChanged: true, wantCount: 1},
		{name: "already selected is a no-op", member: memberWithDates(day(5)), date: day(5), wantChanged: false, wantCount: 1},
		{name: "fourth date exceeds capacity", member: memberWithDates(day(1), day(2), day(3)), date: day(4), wantErr: models.ErrCapacityExceeded, wantCount: 3},
		{name: "past date rejected", member: memberWithDates(), date: day(-1), wantErr: models.ErrValidation, wantCount: 0},
		{name: "date beyond storable range rejected", member: memberWithDates(), date: time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC), wantErr: models.ErrValidation, wantCount: 0},
		{name: "previously selected past date is a no-op", member: memberWithDates(day(-1)), date: day(-1), wantChanged: false, wantCount: 1},
		{
			name:      "locked member",
			member:    &models.Member{ID: "2", PayoutDates: []time.Time{day(1), day(2), day(3)}, DatesLocked: true},
			date:      day(4),
			wantErr:   models.ErrInvalidStateTransition,
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed, err := SelectDate(tt.member, tt.date, testNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SelectDate() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("SelectDate() unexpected error = %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if len(tt.member.PayoutDates) != tt.wantCount {
				t.Errorf("dates = %d, want %d", len(tt.member.PayoutDates), tt.wantCount)
			}
		})
	}
}

func TestSelectDate_KeepsChronologicalOrder(t *testing.T) {
	m := memberWithDates()
	for _, d := range []time.Time{day(9), day(2), day(5)} {
		if _, err := SelectDate(m, d, testNow); err != nil {
			t.Fatalf("SelectDate() error = %v", err)
		}
	}
	for i := 1; i < len(m.PayoutDates); i++ {
		if !m.PayoutDates[i-1].Before(m.PayoutDates[i]) {
			t.Fatalf("dates not sorted: %v", m.PayoutDates)
		}
	}
}

func TestDeselectDate(t *testing.T) {
	m := memberWithDates(day(-2), day(3))

	changed, err := DeselectDate(m, day(-2))
	if err != nil || !changed {
		t.Fatalf("DeselectDate(past pick) = %v, %v; want true, nil", changed, err)
	}
	if len(m.PayoutDates) != 1 || !m.PayoutDates[0].Equal(day(3)) {
		t.Errorf("dates = %v, want [%v]", m.PayoutDates, day(3))
	}

	changed, err = DeselectDate(m, day(7))
	if err != nil || changed {
		t.Errorf("DeselectDate(unselected) = %v, %v; want false, nil", changed, err)
	}
}

func TestCommitDates(t *testing.T) {
	incomplete := memberWithDates(day(1), day(2))
	if err := CommitDates(incomplete); !errors.Is(err, models.ErrIncompleteSelection) {
		t.Errorf("CommitDates(2 dates) error = %v, want ErrIncompleteSelection", err)
	}
	if incomplete.DatesLocked {
		t.Error("incomplete selection must not lock")
	}

	m := memberWithDates(day(1), day(2), day(3))
	if err := CommitDates(m); err != nil {
		t.Fatalf("CommitDates() error = %v", err)
	}
	if !m.DatesLocked {
		t.Error("expected dates to be locked")
	}
	if err := CommitDates(m); !errors.Is(err, models.ErrInvalidStateTransition) {
		t.Errorf("second CommitDates() error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestLockMonotonicity(t *testing.T) {
	m := memberWithDates()
	for _, d := range []time.Time{day(1), day(2), day(3)} {
		if _, err := SelectDate(m, d, testNow); err != nil {
			t.Fatalf("SelectDate() error = %v", err)
		}
	}
	if err := CommitDates(m); err != nil {
		t.Fatalf("CommitDates() error = %v", err)
	}

	// A fourth pick is rejected for the lock before capacity is considered.
	if _, err := SelectDate(m, day(4), testNow); !errors.Is(err, models.ErrInvalidStateTransition) {
		t.Errorf("SelectDate() after commit error = %v, want ErrInvalidStateTransition", err)
	}
	if _, err := DeselectDate(m, day(1)); !errors.Is(err, models.ErrInvalidStateTransition) {
		t.Errorf("DeselectDate() after commit error = %v, want ErrInvalidStateTransition", err)
	}

	if !UnlockDates(m) {
		t.Fatal("UnlockDates() should report a change")
	}
	if len(m.PayoutDates) != 3 {
		t.Errorf("unlock cleared dates: %v", m.PayoutDates)
	}
	if _, err := DeselectDate(m, day(1)); err != nil {
		t.Errorf("DeselectDate() after unlock error = %v", err)
	}
	if UnlockDates(m) {
		t.Error("UnlockDates() on an open selection should be a no-op")
	}
}
