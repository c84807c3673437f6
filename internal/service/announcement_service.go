package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/clock"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/idgen"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// AnnouncementService appends and lists admin announcements.
type AnnouncementService struct {
	store  storage.Store
	clock  clock.Clock
	ids    idgen.Generator
	events events.Publisher
}

// NewAnnouncementService creates a new AnnouncementService. pub may be nil.
func NewAnnouncementService(store storage.Store, clk clock.Clock, ids idgen.Generator, pub events.Publisher) *AnnouncementService {
	return &AnnouncementService{store: store, clock: clk, ids: ids, events: publisherOrNop(pub)}
}

// Create appends an announcement. An empty targetMemberID broadcasts it.
func (s *AnnouncementService) Create(ctx context.Context, title, message, sender, targetMemberID string) (*models.Announcement, error) {
	slog.Info("CreateAnnouncement request received", "title", title, "target_member_id", targetMemberID)

	if strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: announcement title and message are required", models.ErrValidation)
	}
	if targetMemberID != "" {
		if _, err := s.store.GetMember(ctx, targetMemberID); err != nil {
			logFailure("CreateAnnouncement failed", err, "target_member_id", targetMemberID)
			return nil, err
		}
	}
	if sender == "" {
		sender = "Admin"
	}

	ann := &models.Announcement{
		ID:             s.ids.NewID(),
		Title:          title,
		Message:        message,
		Timestamp:      s.clock.Now(),
		Sender:         sender,
		TargetMemberID: targetMemberID,
	}
	if err := s.store.CreateAnnouncement(ctx, ann); err != nil {
		logFailure("CreateAnnouncement failed", err)
		return nil, err
	}

	slog.Info("Announcement created", "announcement_id", ann.ID)
	publish(ctx, s.events, events.Event{
		Type: events.AnnouncementCreated, SubjectID: ann.ID, MemberID: targetMemberID, At: ann.Timestamp,
	})
	return ann, nil
}

// List returns the announcements visible to viewerID, newest first.
func (s *AnnouncementService) List(ctx context.Context, viewerID string) ([]*models.Announcement, error) {
	all, err := s.store.ListAnnouncements(ctx)
	if err != nil {
		logFailure("ListAnnouncements failed", err)
		return nil, err
	}

	visible := make([]*models.Announcement, 0, len(all))
	for _, a := range all {
		if a.VisibleTo(viewerID) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}
