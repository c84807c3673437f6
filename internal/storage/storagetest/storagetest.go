// Package storagetest holds a behavioural suite every storage.Store
// implementation must pass.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) storage.Store

var base = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

// Run exercises newStore against the storage.Store contract.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	open := func(t *testing.T) storage.Store {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { s.Close() })
		return s
	}

	t.Run("SaveConfig then GetConfig round-trips", func(t *testing.T) {
		s := open(t)
		cfg := &models.GroupConfig{
			Name:               "Twangumugayo",
			DailyRate:          1000,
			ContributionAmount: 5000,
			Currency:           "RWF",
			Interval:           models.IntervalWeekly,
			StartDate:          base,
			TotalMembers:       12,
		}
		if err := s.SaveConfig(ctx, cfg); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		cfg.DailyRate = 1500
		if err := s.SaveConfig(ctx, cfg); err != nil {
			t.Fatalf("second SaveConfig failed: %v", err)
		}

		got, err := s.GetConfig(ctx)
		if err != nil {
			t.Fatalf("GetConfig failed: %v", err)
		}
		if got.DailyRate != 1500 {
			t.Errorf("DailyRate = %d, want 1500", got.DailyRate)
		}
		if !got.StartDate.Equal(base) {
			t.Errorf("StartDate = %v, want %v", got.StartDate, base)
		}
		if got.Interval != models.IntervalWeekly || got.TotalMembers != 12 || got.Currency != "RWF" {
			t.Errorf("unexpected config: %+v", got)
		}
	})

	t.Run("SaveConfig is optimistic", func(t *testing.T) {
		s := open(t)
		if err := s.SaveConfig(ctx, &models.GroupConfig{
			Name: "Twangumugayo", DailyRate: 1000, Currency: "RWF",
			Interval: models.IntervalWeekly, StartDate: base, TotalMembers: 5,
		}); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		a, _ := s.GetConfig(ctx)
		b, _ := s.GetConfig(ctx)

		a.DailyRate = 1200
		if err := s.SaveConfig(ctx, a); err != nil {
			t.Fatalf("first writer failed: %v", err)
		}
		b.Currency = "USD"
		if err := s.SaveConfig(ctx, b); !errors.Is(err, models.ErrConflict) {
			t.Fatalf("Expected ErrConflict for stale config, got %v", err)
		}

		got, _ := s.GetConfig(ctx)
		if got.DailyRate != 1200 || got.Currency != "RWF" || got.Version != a.Version {
			t.Errorf("unexpected config after conflict: %+v (want version %d)", got, a.Version)
		}
	})

	t.Run("members round-trip and list by rank", func(t *testing.T) {
		s := open(t)
		second := &models.Member{ID: "m2", Name: "Aline", Phone: "0788", Role: models.RoleMember, PayoutRank: 2}
		first := &models.Member{
			ID: "m1", Name: "Eric", Phone: "0789", Role: models.RoleAdmin, PayoutRank: 1,
			PayoutDates: []time.Time{base.Add(72 * time.Hour)},
		}
		for _, m := range []*models.Member{second, first} {
			if err := s.CreateMember(ctx, m); err != nil {
				t.Fatalf("CreateMember(%s) failed: %v", m.ID, err)
			}
		}

		got, err := s.GetMember(ctx, "m1")
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if got.Name != "Eric" || got.Role != models.RoleAdmin {
			t.Errorf("unexpected member: %+v", got)
		}
		if len(got.PayoutDates) != 1 || !got.PayoutDates[0].Equal(base.Add(72*time.Hour)) {
			t.Errorf("PayoutDates = %v", got.PayoutDates)
		}

		list, err := s.ListMembers(ctx)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != "m1" || list[1].ID != "m2" {
			t.Errorf("ListMembers order wrong: %v", memberIDs(list))
		}
	})

	t.Run("times at the range bounds round-trip exactly", func(t *testing.T) {
		s := open(t)
		last := models.MaxTime.Add(-time.Nanosecond)
		m := &models.Member{
			ID: "m1", Name: "Eric", Role: models.RoleMember, PayoutRank: 1,
			PayoutDates: []time.Time{models.MinTime, last},
		}
		if err := s.CreateMember(ctx, m); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}

		got, err := s.GetMember(ctx, "m1")
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if len(got.PayoutDates) != 2 || !got.PayoutDates[0].Equal(models.MinTime) || !got.PayoutDates[1].Equal(last) {
			t.Errorf("PayoutDates = %v, want [%v %v]", got.PayoutDates, models.MinTime, last)
		}
	})

	t.Run("CreateMember generates ID and rejects taken rank", func(t *testing.T) {
		s := open(t)
		m := &models.Member{Name: "Eric", Role: models.RoleMember, PayoutRank: 1}
		if err := s.CreateMember(ctx, m); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
		if m.ID == "" {
			t.Error("Expected member ID to be generated")
		}

		dup := &models.Member{ID: "other", Name: "Aline", Role: models.RoleMember, PayoutRank: 1}
		if err := s.CreateMember(ctx, dup); !errors.Is(err, models.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("GetMember unknown returns ErrNotFound", func(t *testing.T) {
		s := open(t)
		if _, err := s.GetMember(ctx, "nobody"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateMember is optimistic", func(t *testing.T) {
		s := open(t)
		if err := s.CreateMember(ctx, &models.Member{ID: "m1", Name: "Eric", Role: models.RoleMember, PayoutRank: 1}); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}

		a, _ := s.GetMember(ctx, "m1")
		b, _ := s.GetMember(ctx, "m1")

		a.PayoutDates = []time.Time{base.Add(48 * time.Hour), base.Add(96 * time.Hour)}
		a.DatesLocked = true
		if err := s.UpdateMember(ctx, a); err != nil {
			t.Fatalf("UpdateMember failed: %v", err)
		}
		if a.Version != 1 {
			t.Errorf("Version = %d, want 1", a.Version)
		}

		b.PayoutDates = nil
		if err := s.UpdateMember(ctx, b); !errors.Is(err, models.ErrConflict) {
			t.Errorf("Expected ErrConflict for stale write, got %v", err)
		}

		got, _ := s.GetMember(ctx, "m1")
		if !got.DatesLocked || len(got.PayoutDates) != 2 {
			t.Errorf("stale write leaked: %+v", got)
		}

		ghost := &models.Member{ID: "ghost"}
		if err := s.UpdateMember(ctx, ghost); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("submission and ledger entry are written together", func(t *testing.T) {
		s := open(t)
		createMember(t, s, "m1", 1)

		collection := base.Add(24 * time.Hour)
		sub := &models.CollectionSubmission{
			ID:             "s1",
			MemberID:       "m1",
			MemberName:     "Eric",
			SelectedDays:   []string{"2026-01-08", "2026-01-09"},
			Amount:         2000,
			DailyRate:      1000,
			Gateway:        models.GatewayMoMo,
			TransactionID:  "TX1",
			CollectionDate: &collection,
			Status:         models.StatusVerified,
			Timestamp:      base,
			IsLocked:       true,
		}
		entry := &models.Contribution{
			ID: "c1", MemberID: "m1", Amount: 2000, Date: base,
			Status: models.StatusVerified, CycleNumber: 2, SubmissionID: "s1",
		}
		if err := s.CreateSubmission(ctx, sub, entry); err != nil {
			t.Fatalf("CreateSubmission failed: %v", err)
		}

		got, err := s.GetSubmission(ctx, "s1")
		if err != nil {
			t.Fatalf("GetSubmission failed: %v", err)
		}
		if len(got.SelectedDays) != 2 || got.SelectedDays[0] != "2026-01-08" {
			t.Errorf("SelectedDays = %v", got.SelectedDays)
		}
		if got.CollectionDate == nil || !got.CollectionDate.Equal(collection) {
			t.Errorf("CollectionDate = %v, want %v", got.CollectionDate, collection)
		}
		if got.Status != models.StatusVerified || !got.IsLocked || got.DailyRate != 1000 {
			t.Errorf("unexpected submission: %+v", got)
		}

		entries, err := s.ListContributions(ctx, "m1")
		if err != nil {
			t.Fatalf("ListContributions failed: %v", err)
		}
		if len(entries) != 1 || entries[0].SubmissionID != "s1" || entries[0].CycleNumber != 2 {
			t.Errorf("unexpected ledger: %+v", entries)
		}
		if !entries[0].Date.Equal(base) {
			t.Errorf("entry Date = %v, want %v", entries[0].Date, base)
		}
	})

	t.Run("CreateSubmission without entry leaves ledger empty", func(t *testing.T) {
		s := open(t)
		createMember(t, s, "m1", 1)

		sub := pendingSubmission("s1", "m1")
		if err := s.CreateSubmission(ctx, sub, nil); err != nil {
			t.Fatalf("CreateSubmission failed: %v", err)
		}
		entries, _ := s.ListContributions(ctx, "")
		if len(entries) != 0 {
			t.Errorf("Expected empty ledger, got %d entries", len(entries))
		}
		if err := s.CreateSubmission(ctx, pendingSubmission("s1", "m1"), nil); !errors.Is(err, models.ErrConflict) {
			t.Errorf("Expected ErrConflict for duplicate id, got %v", err)
		}
	})

	t.Run("UpdateSubmission is optimistic and atomic", func(t *testing.T) {
		s := open(t)
		createMember(t, s, "m1", 1)
		if err := s.CreateSubmission(ctx, pendingSubmission("s1", "m1"), nil); err != nil {
			t.Fatalf("CreateSubmission failed: %v", err)
		}

		winner, _ := s.GetSubmission(ctx, "s1")
		loser, _ := s.GetSubmission(ctx, "s1")

		winner.Status = models.StatusVerified
		winner.IsLocked = true
		entry := &models.Contribution{MemberID: "m1", Amount: 1000, Date: base, Status: models.StatusVerified, CycleNumber: 1, SubmissionID: "s1"}
		if err := s.UpdateSubmission(ctx, winner, entry); err != nil {
			t.Fatalf("UpdateSubmission failed: %v", err)
		}
		if entry.ID == "" {
			t.Error("Expected entry ID to be generated")
		}

		loser.Status = models.StatusVerified
		dupEntry := &models.Contribution{MemberID: "m1", Amount: 1000, Date: base, Status: models.StatusVerified, CycleNumber: 1, SubmissionID: "s1"}
		if err := s.UpdateSubmission(ctx, loser, dupEntry); !errors.Is(err, models.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}

		entries, _ := s.ListContributions(ctx, "")
		if len(entries) != 1 {
			t.Errorf("Expected exactly one ledger entry, got %d", len(entries))
		}

		if err := s.UpdateSubmission(ctx, &models.CollectionSubmission{ID: "nope"}, nil); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("concurrent updates let exactly one writer win", func(t *testing.T) {
		s := open(t)
		createMember(t, s, "m1", 1)
		if err := s.CreateSubmission(ctx, pendingSubmission("s1", "m1"), nil); err != nil {
			t.Fatalf("CreateSubmission failed: %v", err)
		}

		const writers = 4
		subs := make([]*models.CollectionSubmission, writers)
		for i := range subs {
			subs[i], _ = s.GetSubmission(ctx, "s1")
		}

		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := range subs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				subs[i].Status = models.StatusVerified
				subs[i].IsLocked = true
				errs[i] = s.UpdateSubmission(ctx, subs[i], &models.Contribution{
					MemberID: "m1", Amount: 1000, Date: base, Status: models.StatusVerified, SubmissionID: "s1",
				})
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			}
		}
		if wins != 1 {
			t.Errorf("Expected exactly one winner, got %d (errs=%v)", wins, errs)
		}
		entries, _ := s.ListContributions(ctx, "")
		if len(entries) != 1 {
			t.Errorf("Expected one ledger entry, got %d", len(entries))
		}
	})

	t.Run("ListSubmissions keeps append order and filters by member", func(t *testing.T) {
		s := open(t)
		createMember(t, s, "m1", 1)
		createMember(t, s, "m2", 2)
		for _, sub := range []*models.CollectionSubmission{
			pendingSubmission("b", "m1"),
			pendingSubmission("a", "m2"),
			pendingSubmission("c", "m1"),
		} {
			if err := s.CreateSubmission(ctx, sub, nil); err != nil {
				t.Fatalf("CreateSubmission failed: %v", err)
			}
		}

		all, _ := s.ListSubmissions(ctx, "")
		if got := submissionIDs(all); len(got) != 3 || got[0] != "b" || got[1] != "a" || got[2] != "c" {
			t.Errorf("ListSubmissions order = %v", got)
		}
		mine, _ := s.ListSubmissions(ctx, "m1")
		if got := submissionIDs(mine); len(got) != 2 || got[0] != "b" || got[1] != "c" {
			t.Errorf("ListSubmissions(m1) = %v", got)
		}
	})

	t.Run("action plan lifecycle", func(t *testing.T) {
		s := open(t)
		plan := &models.ActionPlan{Title: "Buy goats", Description: "Market day", TargetDate: base.Add(36 * time.Hour), Status: models.PlanPlanned}
		if err := s.CreateActionPlan(ctx, plan); err != nil {
			t.Fatalf("CreateActionPlan failed: %v", err)
		}
		if plan.ID == "" {
			t.Fatal("Expected plan ID to be generated")
		}

		plan.Status = models.PlanCompleted
		if err := s.UpdateActionPlan(ctx, plan); err != nil {
			t.Fatalf("UpdateActionPlan failed: %v", err)
		}
		got, err := s.GetActionPlan(ctx, plan.ID)
		if err != nil {
			t.Fatalf("GetActionPlan failed: %v", err)
		}
		if got.Status != models.PlanCompleted || !got.TargetDate.Equal(plan.TargetDate) {
			t.Errorf("unexpected plan: %+v", got)
		}

		if err := s.DeleteActionPlan(ctx, plan.ID); err != nil {
			t.Fatalf("DeleteActionPlan failed: %v", err)
		}
		if _, err := s.GetActionPlan(ctx, plan.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := s.DeleteActionPlan(ctx, plan.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for second delete, got %v", err)
		}
		plans, _ := s.ListActionPlans(ctx)
		if len(plans) != 0 {
			t.Errorf("Expected no plans, got %d", len(plans))
		}
	})

	t.Run("announcements list newest first", func(t *testing.T) {
		s := open(t)
		anns := []*models.Announcement{
			{ID: "old", Title: "Old", Message: "m", Timestamp: base.Add(-2 * time.Hour), Sender: "Admin"},
			{ID: "new", Title: "New", Message: "m", Timestamp: base, Sender: "Admin", TargetMemberID: "m1"},
			{ID: "mid", Title: "Mid", Message: "m", Timestamp: base.Add(-time.Hour), Sender: "Admin"},
		}
		for _, a := range anns {
			if err := s.CreateAnnouncement(ctx, a); err != nil {
				t.Fatalf("CreateAnnouncement failed: %v", err)
			}
		}

		got, err := s.ListAnnouncements(ctx)
		if err != nil {
			t.Fatalf("ListAnnouncements failed: %v", err)
		}
		if len(got) != 3 || got[0].ID != "new" || got[1].ID != "mid" || got[2].ID != "old" {
			t.Errorf("unexpected order: %v", got)
		}
		if got[0].TargetMemberID != "m1" || got[1].TargetMemberID != "" {
			t.Errorf("TargetMemberID not preserved: %+v", got[:2])
		}
	})
}

func createMember(t *testing.T, s storage.Store, id string, rank int) {
	t.Helper()
	m := &models.Member{ID: id, Name: "Member " + id, Role: models.RoleMember, PayoutRank: rank}
	if err := s.CreateMember(context.Background(), m); err != nil {
		t.Fatalf("CreateMember(%s) failed: %v", id, err)
	}
}

func pendingSubmission(id, memberID string) *models.CollectionSubmission {
	return &models.CollectionSubmission{
		ID:           id,
		MemberID:     memberID,
		MemberName:   "Member " + memberID,
		SelectedDays: []string{"2026-01-09"},
		Amount:       1000,
		DailyRate:    1000,
		Gateway:      models.GatewayManual,
		Status:       models.StatusPending,
		Timestamp:    base,
	}
}

func memberIDs(ms []*models.Member) []string {
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	return ids
}

func submissionIDs(subs []*models.CollectionSubmission) []string {
	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = s.ID
	}
	return ids
}
