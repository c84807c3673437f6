package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/calculator"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/clock"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/metrics"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/workflow"
)

// MemberService exposes the member registry and the payout-date state machine.
type MemberService struct {
	store   storage.Store
	clock   clock.Clock
	events  events.Publisher
	metrics *metrics.Metrics
}

// NewMemberService creates a new MemberService. pub and m may be nil.
func NewMemberService(store storage.Store, clk clock.Clock, pub events.Publisher, m *metrics.Metrics) *MemberService {
	return &MemberService{store: store, clock: clk, events: publisherOrNop(pub), metrics: m}
}

// Get retrieves a member by ID.
func (s *MemberService) Get(ctx context.Context, memberID string) (*models.Member, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		logFailure("GetMember failed", err, "member_id", memberID)
		return nil, err
	}
	return member, nil
}

// List returns all members ordered by payout rank.
func (s *MemberService) List(ctx context.Context) ([]*models.Member, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		logFailure("ListMembers failed", err)
		return nil, err
	}
	return members, nil
}

// SelectDate adds a payout date while the selection is open.
func (s *MemberService) SelectDate(ctx context.Context, memberID string, date time.Time) (*models.Member, error) {
	slog.Info("SelectDate request received", "member_id", memberID, "date", date)

	return s.transition(ctx, "SelectDate", memberID, func(m *models.Member) (bool, error) {
		return workflow.SelectDate(m, date.UTC(), s.clock.Now())
	})
}

// DeselectDate removes a payout date while the selection is open.
func (s *MemberService) DeselectDate(ctx context.Context, memberID string, date time.Time) (*models.Member, error) {
	slog.Info("DeselectDate request received", "member_id", memberID, "date", date)

	return s.transition(ctx, "DeselectDate", memberID, func(m *models.Member) (bool, error) {
		return workflow.DeselectDate(m, date.UTC())
	})
}

// CommitDates locks a complete selection of payout dates.
func (s *MemberService) CommitDates(ctx context.Context, memberID string) (*models.Member, error) {
	slog.Info("CommitDates request received", "member_id", memberID)

	member, err := s.transition(ctx, "CommitDates", memberID, func(m *models.Member) (bool, error) {
		return true, workflow.CommitDates(m)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDateCommit()
	publish(ctx, s.events, events.Event{
		Type: events.DatesCommitted, SubjectID: member.ID, MemberID: member.ID, At: s.clock.Now(),
	})
	return member, nil
}

// UnlockDates reopens a member's selection. The dates are kept.
func (s *MemberService) UnlockDates(ctx context.Context, memberID string) (*models.Member, error) {
	slog.Info("UnlockDates request received", "member_id", memberID)

	member, err := s.transition(ctx, "UnlockDates", memberID, func(m *models.Member) (bool, error) {
		return workflow.UnlockDates(m), nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.Event{
		Type: events.DatesUnlocked, SubjectID: member.ID, MemberID: member.ID, At: s.clock.Now(),
	})
	return member, nil
}

// NextPayout returns the member's next payout target, or nil when no date is
// far enough ahead.
func (s *MemberService) NextPayout(ctx context.Context, memberID string) (*time.Time, error) {
	member, err := s.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return calculator.NextPayoutTarget(member, s.clock.Now()), nil
}

// transition loads the member, applies fn and stores the result when fn
// reports a change.
func (s *MemberService) transition(ctx context.Context, op, memberID string, fn func(*models.Member) (bool, error)) (*models.Member, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		logFailure(op+" failed", err, "member_id", memberID)
		return nil, err
	}

	changed, err := fn(member)
	if err != nil {
		logFailure(op+" rejected", err, "member_id", memberID)
		return nil, err
	}
	if !changed {
		return member, nil
	}

	if err := s.store.UpdateMember(ctx, member); err != nil {
		logFailure(op+" failed", err, "member_id", memberID)
		return nil, err
	}

	slog.Info(op+" successful",
		"member_id", member.ID,
		"dates", len(member.PayoutDates),
		"locked", member.DatesLocked,
	)
	return member, nil
}
