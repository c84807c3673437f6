// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	// Pragmas in the DSN apply to every pooled connection
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite allows one writer; a single connection serializes access in the pool
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetConfig retrieves the singleton group configuration row.
func (s *SQLiteStore) GetConfig(ctx context.Context) (*models.GroupConfig, error) {
	cfg := &models.GroupConfig{}
	var interval string
	var startDate int64

	err := s.db.QueryRowContext(ctx,
		`SELECT name, daily_rate, contribution_amount, currency, rotation_interval, start_date, total_members, version
		 FROM group_config WHERE id = 1`,
	).Scan(&cfg.Name, &cfg.DailyRate, &cfg.ContributionAmount, &cfg.Currency, &interval, &startDate, &cfg.TotalMembers, &cfg.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group config", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	cfg.Interval = models.Interval(interval)
	cfg.StartDate = fromUnix(startDate)
	return cfg, nil
}

// SaveConfig updates the group configuration if its version matches, or
// creates it when the table is empty.
func (s *SQLiteStore) SaveConfig(ctx context.Context, cfg *models.GroupConfig) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE group_config SET
		   name = ?, daily_rate = ?, contribution_amount = ?, currency = ?,
		   rotation_interval = ?, start_date = ?, total_members = ?, version = version + 1
		 WHERE id = 1 AND version = ?`,
		cfg.Name, cfg.DailyRate, cfg.ContributionAmount, cfg.Currency, string(cfg.Interval), toUnix(cfg.StartDate), cfg.TotalMembers,
		cfg.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM group_config WHERE id = 1").Scan(&exists)
		if err == nil {
			return fmt.Errorf("%w: group config was modified concurrently", models.ErrConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check config existence: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_config (id, name, daily_rate, contribution_amount, currency, rotation_interval, start_date, total_members, version)
			 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cfg.Name, cfg.DailyRate, cfg.ContributionAmount, cfg.Currency, string(cfg.Interval), toUnix(cfg.StartDate), cfg.TotalMembers,
			cfg.Version+1,
		)
		if err != nil {
			return fmt.Errorf("failed to insert config: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	cfg.Version++
	return nil
}

// CreateMember persists a new member and its payout dates.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var holder string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM members WHERE id = ? OR payout_rank = ? LIMIT 1",
		member.ID, member.PayoutRank,
	).Scan(&holder)
	if err == nil {
		return fmt.Errorf("%w: member %s or payout rank %d already taken by %s",
			models.ErrConflict, member.ID, member.PayoutRank, holder)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check member uniqueness: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO members (id, name, phone, role, payout_rank, dates_locked, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.Name, member.Phone, string(member.Role), member.PayoutRank, member.DatesLocked, member.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	if err := insertPayoutDates(ctx, tx, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID, including payout dates.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	member := &models.Member{}
	var role string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, role, payout_rank, dates_locked, version FROM members WHERE id = ?`,
		memberID,
	).Scan(&member.ID, &member.Name, &member.Phone, &role, &member.PayoutRank, &member.DatesLocked, &member.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: member %s", models.ErrNotFound, memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.Role = models.Role(role)

	dates, err := s.payoutDates(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	member.PayoutDates = dates
	return member, nil
}

// ListMembers retrieves all members ordered by payout rank.
func (s *SQLiteStore) ListMembers(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, role, payout_rank, dates_locked, version FROM members ORDER BY payout_rank`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var role string
		if err := rows.Scan(&member.ID, &member.Name, &member.Phone, &role, &member.PayoutRank, &member.DatesLocked, &member.Version); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Role = models.Role(role)
		members = append(members, member)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	for _, member := range members {
		dates, err := s.payoutDates(ctx, member.ID)
		if err != nil {
			return nil, err
		}
		member.PayoutDates = dates
	}
	return members, nil
}

// UpdateMember replaces the payout-date state of a member if its version matches.
func (s *SQLiteStore) UpdateMember(ctx context.Context, member *models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE members SET dates_locked = ?, version = version + 1 WHERE id = ? AND version = ?`,
		member.DatesLocked, member.ID, member.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if err := checkVersioned(ctx, tx, res, "members", "member", member.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM member_payout_dates WHERE member_id = ?", member.ID); err != nil {
		return fmt.Errorf("failed to clear payout dates: %w", err)
	}
	if err := insertPayoutDates(ctx, tx, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	member.Version++
	return nil
}

func (s *SQLiteStore) payoutDates(ctx context.Context, memberID string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payout_at FROM member_payout_dates WHERE member_id = ? ORDER BY payout_at",
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payout dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var at int64
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("failed to scan payout date: %w", err)
		}
		dates = append(dates, fromUnix(at))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payout dates: %w", err)
	}
	return dates, nil
}

func insertPayoutDates(ctx context.Context, tx *sql.Tx, member *models.Member) error {
	for _, d := range member.PayoutDates {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO member_payout_dates (member_id, payout_at) VALUES (?, ?)",
			member.ID, toUnix(d),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payout date: %w", err)
		}
	}
	return nil
}

// checkVersioned turns a zero-row optimistic update into ErrNotFound or ErrConflict.
func checkVersioned(ctx context.Context, tx *sql.Tx, res sql.Result, table, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
	}
	if err != nil {
		return fmt.Errorf("failed to check %s existence: %w", kind, err)
	}
	return fmt.Errorf("%w: %s %s was modified concurrently", models.ErrConflict, kind, id)
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// nullUnix maps an optional time to a nullable column value.
func nullUnix(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return toUnix(*t)
}

// nullString maps an empty string to NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
