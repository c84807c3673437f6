// Package storage provides abstractions for persistent treasury state.
package storage

import (
	"context"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// Store defines the persistence operations used by the service layer.
// This abstraction allows swapping storage backends (SQLite, in-memory)
// without changing the services.
//
// Lookups of unknown ids return an error wrapping models.ErrNotFound.
// Member and submission updates are optimistic: they succeed only when the
// stored Version equals the passed Version, bump it on success and return
// models.ErrConflict otherwise.
type Store interface {
	// GetConfig returns the group configuration.
	GetConfig(ctx context.Context) (*models.GroupConfig, error)

	// SaveConfig replaces the group configuration. It is optimistic like the
	// member and submission updates; the first save of an empty store creates
	// the configuration.
	SaveConfig(ctx context.Context, cfg *models.GroupConfig) error

	// CreateMember persists a new member. The member.ID field is generated if empty.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves a member by ID.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// ListMembers returns all members ordered by payout rank.
	ListMembers(ctx context.Context) ([]*models.Member, error)

	// UpdateMember stores the payout-date state of a member.
	UpdateMember(ctx context.Context, member *models.Member) error

	// ListContributions returns ledger entries in append order. An empty
	// memberID returns the whole ledger.
	ListContributions(ctx context.Context, memberID string) ([]*models.Contribution, error)

	// CreateSubmission appends a submission and, when entry is non-nil, the
	// ledger entry it produced, in one transaction.
	CreateSubmission(ctx context.Context, sub *models.CollectionSubmission, entry *models.Contribution) error

	// GetSubmission retrieves a submission by ID.
	GetSubmission(ctx context.Context, submissionID string) (*models.CollectionSubmission, error)

	// ListSubmissions returns submissions in append order. An empty memberID
	// returns all of them.
	ListSubmissions(ctx context.Context, memberID string) ([]*models.CollectionSubmission, error)

	// UpdateSubmission stores a transitioned submission and, when entry is
	// non-nil, appends the ledger entry, in one transaction.
	UpdateSubmission(ctx context.Context, sub *models.CollectionSubmission, entry *models.Contribution) error

	// CreateActionPlan persists a new action plan.
	CreateActionPlan(ctx context.Context, plan *models.ActionPlan) error

	// GetActionPlan retrieves an action plan by ID.
	GetActionPlan(ctx context.Context, planID string) (*models.ActionPlan, error)

	// ListActionPlans returns all action plans in creation order.
	ListActionPlans(ctx context.Context) ([]*models.ActionPlan, error)

	// UpdateActionPlan stores an edited action plan.
	UpdateActionPlan(ctx context.Context, plan *models.ActionPlan) error

	// DeleteActionPlan removes an action plan.
	DeleteActionPlan(ctx context.Context, planID string) error

	// CreateAnnouncement appends an announcement.
	CreateAnnouncement(ctx context.Context, ann *models.Announcement) error

	// ListAnnouncements returns all announcements, newest first.
	ListAnnouncements(ctx context.Context) ([]*models.Announcement, error)

	// Close releases any resources held by the store.
	Close() error
}
