package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// CreateAnnouncement appends an announcement.
func (s *SQLiteStore) CreateAnnouncement(ctx context.Context, ann *models.Announcement) error {
	if ann.ID == "" {
		ann.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (id, title, message, created_at, sender, target_member_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ann.ID, ann.Title, ann.Message, toUnix(ann.Timestamp), ann.Sender, nullString(ann.TargetMemberID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	return nil
}

// ListAnnouncements retrieves all announcements, newest first. Ties go to the
// most recently appended.
func (s *SQLiteStore) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, message, created_at, sender, target_member_id
		 FROM announcements ORDER BY created_at DESC, seq DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var anns []*models.Announcement
	for rows.Next() {
		ann := &models.Announcement{}
		var (
			at     int64
			target sql.NullString
		)
		if err := rows.Scan(&ann.ID, &ann.Title, &ann.Message, &at, &ann.Sender, &target); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		ann.Timestamp = fromUnix(at)
		ann.TargetMemberID = target.String
		anns = append(anns, ann)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcements: %w", err)
	}
	return anns, nil
}
