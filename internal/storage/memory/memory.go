// Package memory provides an in-process implementation of storage.Store.
// All state sits behind one mutex, so every operation is atomic.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps treasury state in memory. Values are copied on the way in and
// out so callers never share mutable state with the store.
type Store struct {
	mu sync.Mutex

	config        *models.GroupConfig
	members       map[string]*models.Member
	contributions []*models.Contribution
	submissions   []*models.CollectionSubmission
	plans         []*models.ActionPlan
	announcements []*models.Announcement
}

// New creates a store seeded with the given configuration.
func New(cfg models.GroupConfig) *Store {
	return &Store{
		config:  &cfg,
		members: make(map[string]*models.Member),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) GetConfig(ctx context.Context) (*models.GroupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := *s.config
	return &cfg, nil
}

func (s *Store) SaveConfig(ctx context.Context, cfg *models.GroupConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config.Version != cfg.Version {
		return fmt.Errorf("%w: group config was modified concurrently", models.ErrConflict)
	}
	c := *cfg
	c.Version++
	s.config = &c
	cfg.Version++
	return nil
}

func (s *Store) CreateMember(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if _, exists := s.members[member.ID]; exists {
		return fmt.Errorf("%w: member %s already exists", models.ErrConflict, member.ID)
	}
	for _, m := range s.members {
		if m.PayoutRank == member.PayoutRank {
			return fmt.Errorf("%w: payout rank %d is taken by member %s", models.ErrConflict, member.PayoutRank, m.ID)
		}
	}
	s.members[member.ID] = member.Clone()
	return nil
}

func (s *Store) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberID]
	if !ok {
		return nil, fmt.Errorf("%w: member %s", models.ErrNotFound, memberID)
	}
	return m.Clone(), nil
}

func (s *Store) ListMembers(ctx context.Context) ([]*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]*models.Member, 0, len(s.members))
	for _, m := range s.members {
		members = append(members, m.Clone())
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].PayoutRank < members[j].PayoutRank
	})
	return members, nil
}

func (s *Store) UpdateMember(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.members[member.ID]
	if !ok {
		return fmt.Errorf("%w: member %s", models.ErrNotFound, member.ID)
	}
	if current.Version != member.Version {
		return fmt.Errorf("%w: member %s at version %d, got %d", models.ErrConflict, member.ID, current.Version, member.Version)
	}
	member.Version++
	s.members[member.ID] = member.Clone()
	return nil
}

func (s *Store) ListContributions(ctx context.Context, memberID string) ([]*models.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Contribution
	for _, c := range s.contributions {
		if memberID != "" && c.MemberID != memberID {
			continue
		}
		entry := *c
		out = append(out, &entry)
	}
	return out, nil
}

func (s *Store) CreateSubmission(ctx context.Context, sub *models.CollectionSubmission, entry *models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if s.findSubmission(sub.ID) >= 0 {
		return fmt.Errorf("%w: submission %s already exists", models.ErrConflict, sub.ID)
	}
	s.submissions = append(s.submissions, sub.Clone())
	s.appendEntry(entry)
	return nil
}

func (s *Store) GetSubmission(ctx context.Context, submissionID string) (*models.CollectionSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findSubmission(submissionID)
	if i < 0 {
		return nil, fmt.Errorf("%w: submission %s", models.ErrNotFound, submissionID)
	}
	return s.submissions[i].Clone(), nil
}

func (s *Store) ListSubmissions(ctx context.Context, memberID string) ([]*models.CollectionSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.CollectionSubmission
	for _, sub := range s.submissions {
		if memberID != "" && sub.MemberID != memberID {
			continue
		}
		out = append(out, sub.Clone())
	}
	return out, nil
}

func (s *Store) UpdateSubmission(ctx context.Context, sub *models.CollectionSubmission, entry *models.Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findSubmission(sub.ID)
	if i < 0 {
		return fmt.Errorf("%w: submission %s", models.ErrNotFound, sub.ID)
	}
	if s.submissions[i].Version != sub.Version {
		return fmt.Errorf("%w: submission %s at version %d, got %d",
			models.ErrConflict, sub.ID, s.submissions[i].Version, sub.Version)
	}
	sub.Version++
	s.submissions[i] = sub.Clone()
	s.appendEntry(entry)
	return nil
}

func (s *Store) CreateActionPlan(ctx context.Context, plan *models.ActionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	p := *plan
	s.plans = append(s.plans, &p)
	return nil
}

func (s *Store) GetActionPlan(ctx context.Context, planID string) (*models.ActionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPlan(planID)
	if i < 0 {
		return nil, fmt.Errorf("%w: action plan %s", models.ErrNotFound, planID)
	}
	p := *s.plans[i]
	return &p, nil
}

func (s *Store) ListActionPlans(ctx context.Context) ([]*models.ActionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.ActionPlan, len(s.plans))
	for i, p := range s.plans {
		plan := *p
		out[i] = &plan
	}
	return out, nil
}

func (s *Store) UpdateActionPlan(ctx context.Context, plan *models.ActionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPlan(plan.ID)
	if i < 0 {
		return fmt.Errorf("%w: action plan %s", models.ErrNotFound, plan.ID)
	}
	p := *plan
	s.plans[i] = &p
	return nil
}

func (s *Store) DeleteActionPlan(ctx context.Context, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPlan(planID)
	if i < 0 {
		return fmt.Errorf("%w: action plan %s", models.ErrNotFound, planID)
	}
	s.plans = append(s.plans[:i], s.plans[i+1:]...)
	return nil
}

func (s *Store) CreateAnnouncement(ctx context.Context, ann *models.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ann.ID == "" {
		ann.ID = uuid.New().String()
	}
	a := *ann
	s.announcements = append(s.announcements, &a)
	return nil
}

func (s *Store) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Announcement, 0, len(s.announcements))
	for i := len(s.announcements) - 1; i >= 0; i-- {
		a := *s.announcements[i]
		out = append(out, &a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// appendEntry must be called with s.mu held.
func (s *Store) appendEntry(entry *models.Contribution) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	c := *entry
	s.contributions = append(s.contributions, &c)
}

func (s *Store) findSubmission(id string) int {
	for i, sub := range s.submissions {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) findPlan(id string) int {
	for i, p := range s.plans {
		if p.ID == id {
			return i
		}
	}
	return -1
}
