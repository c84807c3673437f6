package service

import (
	"context"
	"testing"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/advice"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/alerts"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

func TestPlans(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPlanService(env.store, env.ids)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "no title", testNow)
	assertKind(t, err, models.KindValidation)
	_, err = svc.Create(ctx, "No date", "", time.Time{})
	assertKind(t, err, models.KindValidation)
	_, err = svc.Create(ctx, "Far away", "", time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC))
	assertKind(t, err, models.KindValidation)

	plan, err := svc.Create(ctx, "Buy goats", "Kimironko market", testNow.Add(36*time.Hour))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if plan.Status != models.PlanPlanned {
		t.Errorf("Status = %s, want PLANNED", plan.Status)
	}

	done, err := svc.SetStatus(ctx, plan.ID, models.PlanCompleted)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if done.Status != models.PlanCompleted {
		t.Errorf("Status = %s, want COMPLETED", done.Status)
	}

	_, err = svc.SetStatus(ctx, plan.ID, "CANCELLED")
	assertKind(t, err, models.KindValidation)
	_, err = svc.SetStatus(ctx, "missing", models.PlanCompleted)
	assertKind(t, err, models.KindNotFound)

	if err := svc.Delete(ctx, plan.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	assertKind(t, svc.Delete(ctx, plan.ID), models.KindNotFound)
}

func TestAnnouncements(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnnouncementService(env.store, env.clock, env.ids, env.events)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Meeting", "Sunday 4 PM", "", ""); err != nil {
		t.Fatalf("Create broadcast failed: %v", err)
	}
	env.clock.Advance(time.Minute)
	targeted, err := svc.Create(ctx, "Your payout", "Collect on Friday", "Treasurer", "2")
	if err != nil {
		t.Fatalf("Create targeted failed: %v", err)
	}
	if targeted.Sender != "Treasurer" {
		t.Errorf("Sender = %q", targeted.Sender)
	}

	_, err = svc.Create(ctx, "Ghost", "hello", "", "99")
	assertKind(t, err, models.KindNotFound)
	_, err = svc.Create(ctx, "", "hello", "", "")
	assertKind(t, err, models.KindValidation)

	forTarget, _ := svc.List(ctx, "2")
	if len(forTarget) != 2 || forTarget[0].ID != targeted.ID {
		t.Errorf("target should see both, newest first: %+v", forTarget)
	}
	forOther, _ := svc.List(ctx, "1")
	if len(forOther) != 1 || forOther[0].Sender != "Admin" {
		t.Errorf("other member should see the broadcast only: %+v", forOther)
	}
}

func TestAlertFeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plans := NewPlanService(env.store, env.ids)
	anns := NewAnnouncementService(env.store, env.clock, env.ids, nil)
	collections := env.collections()

	plans.Create(ctx, "Group meeting", "", testNow.Add(47*time.Hour))
	plans.Create(ctx, "Far away", "", testNow.Add(72*time.Hour))

	pickup := testNow.Add(12 * time.Hour)
	collections.Submit(ctx, SubmitRequest{
		MemberID: "2", Days: []string{"2026-01-09"}, Gateway: models.GatewayMoMo, Amount: 1000, CollectionDate: &pickup,
	})

	anns.Create(ctx, "Hello", "Broadcast to everyone", "", "")
	anns.Create(ctx, "Private", "Only for member 2", "", "2")

	svc := NewAlertService(env.store, env.clock)

	feed, err := svc.List(ctx, "1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("Expected 3 alerts for member 1, got %d: %+v", len(feed), feed)
	}
	if feed[0].Category != alerts.CategoryUrgent || feed[1].Category != alerts.CategoryCollection {
		t.Errorf("unexpected order: %+v", feed)
	}

	feed2, _ := svc.List(ctx, "2")
	if len(feed2) != 4 {
		t.Errorf("Expected 4 alerts for member 2, got %d", len(feed2))
	}
}

func TestAdviceService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAdviceService(env.store, advice.NewService("Ishyirahamwe Twangumugayo", nil))
	ctx := context.Background()

	text, err := svc.Advice(ctx, "2", advice.French)
	if err != nil {
		t.Fatalf("Advice failed: %v", err)
	}
	if text == "" {
		t.Error("Expected fallback advice")
	}

	_, err = svc.Advice(ctx, "99", advice.English)
	assertKind(t, err, models.KindNotFound)

	if draft := svc.DraftAnnouncement(ctx, "meeting", advice.English); draft == "" {
		t.Error("Expected fallback draft")
	}
}
