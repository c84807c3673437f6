package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// ListContributions retrieves ledger entries in append order, optionally for one member.
func (s *SQLiteStore) ListContributions(ctx context.Context, memberID string) ([]*models.Contribution, error) {
	query := `SELECT id, member_id, amount, contributed_at, status, cycle_number, submission_id FROM contributions`
	var args []interface{}
	if memberID != "" {
		query += " WHERE member_id = ?"
		args = append(args, memberID)
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var entries []*models.Contribution
	for rows.Next() {
		entry := &models.Contribution{}
		var (
			at           int64
			status       string
			submissionID sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.MemberID, &entry.Amount, &at, &status, &entry.CycleNumber, &submissionID); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		entry.Date = fromUnix(at)
		entry.Status = models.PaymentStatus(status)
		entry.SubmissionID = submissionID.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return entries, nil
}

// insertContribution appends a ledger entry inside tx. A nil entry is a no-op.
func insertContribution(ctx context.Context, tx *sql.Tx, entry *models.Contribution) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO contributions (id, member_id, amount, contributed_at, status, cycle_number, submission_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.MemberID, entry.Amount, toUnix(entry.Date), string(entry.Status), entry.CycleNumber,
		nullString(entry.SubmissionID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contribution: %w", err)
	}
	return nil
}
