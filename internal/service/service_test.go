package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/clock"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/idgen"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage/memory"
)

var testNow = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func testConfig() models.GroupConfig {
	return models.GroupConfig{
		Name:               "Ishyirahamwe Twangumugayo",
		DailyRate:          1000,
		ContributionAmount: 5000,
		Currency:           "RWF",
		Interval:           models.IntervalWeekly,
		StartDate:          time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
		TotalMembers:       5,
	}
}

// recorder is an events.Publisher that keeps what it was given.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store  storage.Store
	clock  *clock.Fixed
	ids    *idgen.Sequence
	events *recorder
}

// newTestEnv creates an in-memory store seeded with two members.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New(testConfig())
	ctx := context.Background()
	for _, m := range []*models.Member{
		{ID: "1", Name: "Jean de Dieu Umubyeyi", Phone: "+250788123456", Role: models.RoleAdmin, PayoutRank: 1},
		{ID: "2", Name: "Alice Mutoni", Phone: "+250788654321", Role: models.RoleMember, PayoutRank: 2},
	} {
		if err := store.CreateMember(ctx, m); err != nil {
			t.Fatalf("failed to seed member: %v", err)
		}
	}

	return &testEnv{
		store:  store,
		clock:  clock.NewFixed(testNow),
		ids:    idgen.NewSequence("id"),
		events: &recorder{},
	}
}

func (e *testEnv) collections() *CollectionService {
	return NewCollectionService(e.store, nil, e.clock, e.ids, e.events, nil)
}

func (e *testEnv) members() *MemberService {
	return NewMemberService(e.store, e.clock, e.events, nil)
}

func assertKind(t *testing.T, err error, want models.Kind) {
	t.Helper()
	if got := models.KindOf(err); got != want {
		t.Errorf("error kind = %q, want %q (err=%v)", got, want, err)
	}
}
