package service

import (
	"context"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/alerts"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/clock"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// AlertService computes the notification feed from current state on every call.
type AlertService struct {
	store storage.Store
	clock clock.Clock
}

// NewAlertService creates a new AlertService.
func NewAlertService(store storage.Store, clk clock.Clock) *AlertService {
	return &AlertService{store: store, clock: clk}
}

// List returns the alerts for viewerID, newest first.
func (s *AlertService) List(ctx context.Context, viewerID string) ([]alerts.Alert, error) {
	plans, err := s.store.ListActionPlans(ctx)
	if err != nil {
		logFailure("ListAlerts failed", err)
		return nil, err
	}
	subs, err := s.store.ListSubmissions(ctx, "")
	if err != nil {
		logFailure("ListAlerts failed", err)
		return nil, err
	}
	anns, err := s.store.ListAnnouncements(ctx)
	if err != nil {
		logFailure("ListAlerts failed", err)
		return nil, err
	}

	return alerts.ComputeAlerts(plans, subs, anns, s.clock.Now(), viewerID), nil
}
