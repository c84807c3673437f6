package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// CreateActionPlan persists a new action plan.
func (s *SQLiteStore) CreateActionPlan(ctx context.Context, plan *models.ActionPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO action_plans (id, title, description, target_date, status) VALUES (?, ?, ?, ?, ?)`,
		plan.ID, plan.Title, plan.Description, toUnix(plan.TargetDate), string(plan.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action plan: %w", err)
	}
	return nil
}

// GetActionPlan retrieves an action plan by ID.
func (s *SQLiteStore) GetActionPlan(ctx context.Context, planID string) (*models.ActionPlan, error) {
	plan, err := scanPlan(s.db.QueryRowContext(ctx,
		"SELECT id, title, description, target_date, status FROM action_plans WHERE id = ?",
		planID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: action plan %s", models.ErrNotFound, planID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action plan: %w", err)
	}
	return plan, nil
}

// ListActionPlans retrieves all action plans in creation order.
func (s *SQLiteStore) ListActionPlans(ctx context.Context) ([]*models.ActionPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, description, target_date, status FROM action_plans ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list action plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.ActionPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate action plans: %w", err)
	}
	return plans, nil
}

// UpdateActionPlan stores an edited action plan.
func (s *SQLiteStore) UpdateActionPlan(ctx context.Context, plan *models.ActionPlan) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE action_plans SET title = ?, description = ?, target_date = ?, status = ? WHERE id = ?",
		plan.Title, plan.Description, toUnix(plan.TargetDate), string(plan.Status), plan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update action plan: %w", err)
	}
	return expectOneRow(res, "action plan", plan.ID)
}

// DeleteActionPlan removes an action plan.
func (s *SQLiteStore) DeleteActionPlan(ctx context.Context, planID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM action_plans WHERE id = ?", planID)
	if err != nil {
		return fmt.Errorf("failed to delete action plan: %w", err)
	}
	return expectOneRow(res, "action plan", planID)
}

func scanPlan(row scanner) (*models.ActionPlan, error) {
	plan := &models.ActionPlan{}
	var (
		target int64
		status string
	)
	if err := row.Scan(&plan.ID, &plan.Title, &plan.Description, &target, &status); err != nil {
		return nil, err
	}
	plan.TargetDate = fromUnix(target)
	plan.Status = models.PlanStatus(status)
	return plan, nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, kind, id)
	}
	return nil
}
