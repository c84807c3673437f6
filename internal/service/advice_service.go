package service

import (
	"context"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/advice"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// AdviceService fills advice prompts from the registry and configuration.
type AdviceService struct {
	store  storage.Store
	advice *advice.Service
}

// NewAdviceService creates a new AdviceService.
func NewAdviceService(store storage.Store, adv *advice.Service) *AdviceService {
	return &AdviceService{store: store, advice: adv}
}

// Advice returns a savings tip for the member in locale.
func (s *AdviceService) Advice(ctx context.Context, memberID string, locale advice.Locale) (string, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		logFailure("Advice failed", err, "member_id", memberID)
		return "", err
	}
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		logFailure("Advice failed", err)
		return "", err
	}
	return s.advice.Advice(ctx, member.Name, cfg.ContributionAmount, cfg.Currency, locale), nil
}

// DraftAnnouncement drafts an announcement about topic in locale.
func (s *AdviceService) DraftAnnouncement(ctx context.Context, topic string, locale advice.Locale) string {
	return s.advice.DraftAnnouncement(ctx, topic, locale)
}
