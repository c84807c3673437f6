package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

const submissionColumns = `id, member_id, member_name, amount, daily_rate, gateway, transaction_id,
	collection_date, status, created_at, is_locked, receipt_ref, version`

// CreateSubmission persists a new submission and its optional ledger entry atomically.
func (s *SQLiteStore) CreateSubmission(ctx context.Context, sub *models.CollectionSubmission, entry *models.Contribution) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM submissions WHERE id = ?", sub.ID).Scan(&exists)
	if err == nil {
		return fmt.Errorf("%w: submission %s already exists", models.ErrConflict, sub.ID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check submission: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO submissions (`+submissionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.MemberID, sub.MemberName, sub.Amount, sub.DailyRate, string(sub.Gateway), sub.TransactionID,
		nullUnix(sub.CollectionDate), string(sub.Status), toUnix(sub.Timestamp), sub.IsLocked,
		nullString(sub.ReceiptRef), sub.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	for _, day := range sub.SelectedDays {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO submission_days (submission_id, day) VALUES (?, ?)",
			sub.ID, day,
		)
		if err != nil {
			return fmt.Errorf("failed to insert submission day: %w", err)
		}
	}

	if err := insertContribution(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSubmission retrieves a submission by ID, including its selected days.
func (s *SQLiteStore) GetSubmission(ctx context.Context, submissionID string) (*models.CollectionSubmission, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE id = ?",
		submissionID,
	)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: submission %s", models.ErrNotFound, submissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	days, err := s.submissionDays(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.SelectedDays = days
	return sub, nil
}

// ListSubmissions retrieves submissions in append order, optionally for one member.
func (s *SQLiteStore) ListSubmissions(ctx context.Context, memberID string) ([]*models.CollectionSubmission, error) {
	query := "SELECT " + submissionColumns + " FROM submissions"
	var args []interface{}
	if memberID != "" {
		query += " WHERE member_id = ?"
		args = append(args, memberID)
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var subs []*models.CollectionSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	for _, sub := range subs {
		days, err := s.submissionDays(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		sub.SelectedDays = days
	}
	return subs, nil
}

// UpdateSubmission stores a transitioned submission if its version matches,
// appending the optional ledger entry in the same transaction.
func (s *SQLiteStore) UpdateSubmission(ctx context.Context, sub *models.CollectionSubmission, entry *models.Contribution) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE submissions SET status = ?, is_locked = ?, receipt_ref = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(sub.Status), sub.IsLocked, nullString(sub.ReceiptRef), sub.ID, sub.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if err := checkVersioned(ctx, tx, res, "submissions", "submission", sub.ID); err != nil {
		return err
	}

	if err := insertContribution(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	sub.Version++
	return nil
}

func (s *SQLiteStore) submissionDays(ctx context.Context, submissionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT day FROM submission_days WHERE submission_id = ? ORDER BY day",
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission days: %w", err)
	}
	defer rows.Close()

	days := []string{}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan submission day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission days: %w", err)
	}
	return days, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*models.CollectionSubmission, error) {
	sub := &models.CollectionSubmission{}
	var (
		gateway, status string
		collectionDate  sql.NullInt64
		createdAt       int64
		receiptRef      sql.NullString
	)
	err := row.Scan(
		&sub.ID, &sub.MemberID, &sub.MemberName, &sub.Amount, &sub.DailyRate, &gateway, &sub.TransactionID,
		&collectionDate, &status, &createdAt, &sub.IsLocked, &receiptRef, &sub.Version,
	)
	if err != nil {
		return nil, err
	}

	sub.Gateway = models.Gateway(gateway)
	sub.Status = models.PaymentStatus(status)
	sub.Timestamp = fromUnix(createdAt)
	if collectionDate.Valid {
		t := fromUnix(collectionDate.Int64)
		sub.CollectionDate = &t
	}
	sub.ReceiptRef = receiptRef.String
	return sub, nil
}
