package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/clock"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// ConfigService reads and patches the group configuration.
type ConfigService struct {
	store  storage.Store
	clock  clock.Clock
	events events.Publisher
}

// NewConfigService creates a new ConfigService. pub may be nil.
func NewConfigService(store storage.Store, clk clock.Clock, pub events.Publisher) *ConfigService {
	return &ConfigService{store: store, clock: clk, events: publisherOrNop(pub)}
}

// Get returns the current group configuration.
func (s *ConfigService) Get(ctx context.Context) (*models.GroupConfig, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		logFailure("GetConfig failed", err)
		return nil, err
	}
	return cfg, nil
}

// Update applies patch. Fields left nil keep their value; the whole patch is
// rejected if any field is invalid. A patch racing another update fails with
// models.ErrConflict instead of overwriting it.
func (s *ConfigService) Update(ctx context.Context, patch models.ConfigPatch) (*models.GroupConfig, error) {
	slog.Info("UpdateConfig request received")

	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		logFailure("UpdateConfig failed", err)
		return nil, err
	}

	if err := applyPatch(cfg, patch); err != nil {
		logFailure("UpdateConfig rejected", err)
		return nil, err
	}

	if err := s.store.SaveConfig(ctx, cfg); err != nil {
		logFailure("UpdateConfig failed", err)
		return nil, err
	}

	slog.Info("Config updated", "daily_rate", cfg.DailyRate, "interval", cfg.Interval)
	publish(ctx, s.events, events.Event{Type: events.ConfigUpdated, SubjectID: "config", At: s.clock.Now()})
	return cfg, nil
}

func applyPatch(cfg *models.GroupConfig, p models.ConfigPatch) error {
	var problems []string

	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		problems = append(problems, "name cannot be empty")
	}
	if p.DailyRate != nil && *p.DailyRate <= 0 {
		problems = append(problems, fmt.Sprintf("daily rate %d must be positive", *p.DailyRate))
	}
	if p.ContributionAmount != nil && *p.ContributionAmount < 0 {
		problems = append(problems, fmt.Sprintf("contribution amount %d cannot be negative", *p.ContributionAmount))
	}
	if p.Currency != nil && strings.TrimSpace(*p.Currency) == "" {
		problems = append(problems, "currency cannot be empty")
	}
	if p.Interval != nil && !p.Interval.Valid() {
		problems = append(problems, fmt.Sprintf("unknown interval %q", *p.Interval))
	}
	if p.TotalMembers != nil && *p.TotalMembers < 1 {
		problems = append(problems, fmt.Sprintf("total members %d must be at least 1", *p.TotalMembers))
	}
	if p.StartDate != nil && (p.StartDate.Before(models.MinTime) || !p.StartDate.Before(models.MaxTime)) {
		problems = append(problems, fmt.Sprintf("start date %s is outside %d-%d",
			p.StartDate.Format(time.RFC3339), models.MinTime.Year(), models.MaxTime.Year()-1))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(problems, "; "))
	}

	if p.Name != nil {
		cfg.Name = *p.Name
	}
	if p.DailyRate != nil {
		cfg.DailyRate = *p.DailyRate
	}
	if p.ContributionAmount != nil {
		cfg.ContributionAmount = *p.ContributionAmount
	}
	if p.Currency != nil {
		cfg.Currency = *p.Currency
	}
	if p.Interval != nil {
		cfg.Interval = *p.Interval
	}
	if p.StartDate != nil {
		cfg.StartDate = p.StartDate.UTC()
	}
	if p.TotalMembers != nil {
		cfg.TotalMembers = *p.TotalMembers
	}
	return nil
}
