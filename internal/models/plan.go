package models

import "time"

// PlanStatus is the lifecycle state of an action plan.
type PlanStatus string

const (
	PlanPlanned   PlanStatus = "PLANNED"
	PlanCompleted PlanStatus = "COMPLETED"
)

// ActionPlan is an admin-scheduled task. Planned items near their target
// date surface as urgent alerts.
type ActionPlan struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  time.Time  `json:"targetDate"`
	Status      PlanStatus `json:"status"`
}
