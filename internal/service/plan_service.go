package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/idgen"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
)

// PlanService manages admin action plans.
type PlanService struct {
	store storage.Store
	ids   idgen.Generator
}

// NewPlanService creates a new PlanService.
func NewPlanService(store storage.Store, ids idgen.Generator) *PlanService {
	return &PlanService{store: store, ids: ids}
}

// Create adds a PLANNED action plan.
func (s *PlanService) Create(ctx context.Context, title, description string, target time.Time) (*models.ActionPlan, error) {
	slog.Info("CreatePlan request received", "title", title, "target_date", target)

	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: plan title is required", models.ErrValidation)
	}
	if target.IsZero() {
		return nil, fmt.Errorf("%w: plan target date is required", models.ErrValidation)
	}
	if err := models.CheckTime("plan target date", target); err != nil {
		return nil, err
	}

	plan := &models.ActionPlan{
		ID:          s.ids.NewID(),
		Title:       title,
		Description: description,
		TargetDate:  target.UTC(),
		Status:      models.PlanPlanned,
	}
	if err := s.store.CreateActionPlan(ctx, plan); err != nil {
		logFailure("CreatePlan failed", err)
		return nil, err
	}

	slog.Info("Plan created", "plan_id", plan.ID)
	return plan, nil
}

// SetStatus marks a plan PLANNED or COMPLETED.
func (s *PlanService) SetStatus(ctx context.Context, planID string, status models.PlanStatus) (*models.ActionPlan, error) {
	slog.Info("SetPlanStatus request received", "plan_id", planID, "status", status)

	if status != models.PlanPlanned && status != models.PlanCompleted {
		return nil, fmt.Errorf("%w: unknown plan status %q", models.ErrValidation, status)
	}

	plan, err := s.store.GetActionPlan(ctx, planID)
	if err != nil {
		logFailure("SetPlanStatus failed", err, "plan_id", planID)
		return nil, err
	}

	plan.Status = status
	if err := s.store.UpdateActionPlan(ctx, plan); err != nil {
		logFailure("SetPlanStatus failed", err, "plan_id", planID)
		return nil, err
	}
	return plan, nil
}

// Delete removes a plan.
func (s *PlanService) Delete(ctx context.Context, planID string) error {
	slog.Info("DeletePlan request received", "plan_id", planID)

	if err := s.store.DeleteActionPlan(ctx, planID); err != nil {
		logFailure("DeletePlan failed", err, "plan_id", planID)
		return err
	}

	slog.Info("Plan deleted", "plan_id", planID)
	return nil
}

// List returns all plans in creation order.
func (s *PlanService) List(ctx context.Context) ([]*models.ActionPlan, error) {
	plans, err := s.store.ListActionPlans(ctx)
	if err != nil {
		logFailure("ListPlans failed", err)
		return nil, err
	}
	return plans, nil
}
