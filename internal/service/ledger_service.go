package service

import (
	"context"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/calculator"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// LedgerService reads the append-only contribution ledger. Entries are only
// written by CollectionService.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// List returns ledger entries in append order. An empty memberID lists all.
func (s *LedgerService) List(ctx context.Context, memberID string) ([]*models.Contribution, error) {
	entries, err := s.store.ListContributions(ctx, memberID)
	if err != nil {
		logFailure("ListContributions failed", err, "member_id", memberID)
		return nil, err
	}
	return entries, nil
}

// Totals returns the pool total and each member's saved amount.
func (s *LedgerService) Totals(ctx context.Context) (calculator.LedgerTotals, error) {
	entries, err := s.store.ListContributions(ctx, "")
	if err != nil {
		logFailure("LedgerTotals failed", err)
		return calculator.LedgerTotals{}, err
	}
	return calculator.CalculateTotals(entries), nil
}
