package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/clock"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/events"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/idgen"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/metrics"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/receipts"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/storage"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/workflow"
)

// ReceiptUpload is receipt proof sent along with a submission.
type ReceiptUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitRequest carries a member's collection submission.
type SubmitRequest struct {
	MemberID       string
	Days           []string
	Gateway        models.Gateway
	Amount         models.Money
	TransactionID  string
	CollectionDate *time.Time

	// Receipt is uploaded to the receipt store. ReceiptRef names a receipt
	// that was stored earlier. Either satisfies the manual receipt rule.
	Receipt    *ReceiptUpload
	ReceiptRef string
}

// CollectionService runs the collection submission workflow.
type CollectionService struct {
	store    storage.Store
	receipts receipts.Store
	clock    clock.Clock
	ids      idgen.Generator
	events   events.Publisher
	metrics  *metrics.Metrics
}

// NewCollectionService creates a new CollectionService. rs, pub and m may be
// nil; without a receipt store uploads are refused.
func NewCollectionService(store storage.Store, rs receipts.Store, clk clock.Clock, ids idgen.Generator, pub events.Publisher, m *metrics.Metrics) *CollectionService {
	return &CollectionService{
		store:    store,
		receipts: rs,
		clock:    clk,
		ids:      ids,
		events:   publisherOrNop(pub),
		metrics:  m,
	}
}

// Submit records a collection submission. Automated gateways settle at once;
// manual ones wait for adjudication.
func (s *CollectionService) Submit(ctx context.Context, req SubmitRequest) (*models.CollectionSubmission, error) {
	slog.Info("SubmitCollection request received",
		"member_id", req.MemberID,
		"days", len(req.Days),
		"gateway", req.Gateway,
		"amount", req.Amount,
	)

	hasReceipt := req.ReceiptRef != "" || (req.Receipt != nil && len(req.Receipt.Data) > 0)
	if err := workflow.CheckInput(req.Amount, req.CollectionDate); err != nil {
		logFailure("SubmitCollection rejected", err, "member_id", req.MemberID)
		return nil, err
	}
	if _, err := workflow.Prepare(req.Days, req.Gateway, hasReceipt); err != nil {
		logFailure("SubmitCollection rejected", err, "member_id", req.MemberID)
		return nil, err
	}

	member, err := s.store.GetMember(ctx, req.MemberID)
	if err != nil {
		logFailure("SubmitCollection failed", err, "member_id", req.MemberID)
		return nil, err
	}

	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		logFailure("SubmitCollection failed", err)
		return nil, err
	}

	ref := req.ReceiptRef
	uploaded := ""
	if ref == "" && req.Receipt != nil && len(req.Receipt.Data) > 0 {
		ref, err = s.storeReceipt(ctx, member.ID, req.Receipt)
		if err != nil {
			logFailure("SubmitCollection failed to store receipt", err, "member_id", member.ID)
			return nil, err
		}
		uploaded = ref
	}

	sub, entry, err := workflow.Submit(workflow.Submission{
		MemberID:       member.ID,
		MemberName:     member.Name,
		Days:           req.Days,
		Gateway:        req.Gateway,
		Amount:         req.Amount,
		TransactionID:  req.TransactionID,
		CollectionDate: req.CollectionDate,
		ReceiptRef:     ref,
	}, cfg, s.clock.Now(), s.ids)
	if err != nil {
		logFailure("SubmitCollection rejected", err, "member_id", member.ID)
		s.discardReceipt(ctx, uploaded)
		return nil, err
	}

	if err := s.store.CreateSubmission(ctx, sub, entry); err != nil {
		logFailure("SubmitCollection failed", err, "member_id", member.ID)
		s.discardReceipt(ctx, uploaded)
		return nil, err
	}

	slog.Info("Collection submitted",
		"submission_id", sub.ID,
		"member_id", sub.MemberID,
		"status", sub.Status,
		"expected", sub.ExpectedAmount(),
		"ledger_entry", entry != nil,
	)
	s.metrics.ObserveSubmission(string(sub.Gateway), string(sub.Status))
	publish(ctx, s.events, events.Event{
		Type: events.CollectionSubmitted, SubjectID: sub.ID, MemberID: sub.MemberID,
		Status: string(sub.Status), At: sub.Timestamp,
	})
	return sub, nil
}

// Adjudicate approves or rejects a pending submission. Of two concurrent
// adjudications of the same submission exactly one succeeds; the other
// observes an invalid state transition.
func (s *CollectionService) Adjudicate(ctx context.Context, submissionID string, approve bool) (*models.CollectionSubmission, error) {
	slog.Info("AdjudicateCollection request received", "submission_id", submissionID, "approve", approve)

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		logFailure("AdjudicateCollection failed", err, "submission_id", submissionID)
		return nil, err
	}

	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		logFailure("AdjudicateCollection failed", err)
		return nil, err
	}

	entry, err := workflow.Adjudicate(sub, approve, cfg, s.clock.Now(), s.ids)
	if err != nil {
		logFailure("AdjudicateCollection rejected", err, "submission_id", submissionID)
		return nil, err
	}

	if err := s.store.UpdateSubmission(ctx, sub, entry); err != nil {
		if errors.Is(err, models.ErrConflict) {
			err = fmt.Errorf("%w: submission %s was adjudicated concurrently", models.ErrInvalidStateTransition, submissionID)
		}
		logFailure("AdjudicateCollection failed", err, "submission_id", submissionID)
		return nil, err
	}

	slog.Info("Collection adjudicated",
		"submission_id", sub.ID,
		"status", sub.Status,
		"ledger_entry", entry != nil,
	)
	s.metrics.ObserveAdjudication(string(sub.Status))
	publish(ctx, s.events, events.Event{
		Type: events.CollectionAdjudicated, SubjectID: sub.ID, MemberID: sub.MemberID,
		Status: string(sub.Status), At: s.clock.Now(),
	})
	return sub, nil
}

// Unlock clears a submission's lock flag. The status is unchanged.
func (s *CollectionService) Unlock(ctx context.Context, submissionID string) (*models.CollectionSubmission, error) {
	slog.Info("UnlockCollection request received", "submission_id", submissionID)

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		logFailure("UnlockCollection failed", err, "submission_id", submissionID)
		return nil, err
	}

	if !workflow.Unlock(sub) {
		return sub, nil
	}

	if err := s.store.UpdateSubmission(ctx, sub, nil); err != nil {
		logFailure("UnlockCollection failed", err, "submission_id", submissionID)
		return nil, err
	}

	slog.Info("Collection unlocked", "submission_id", sub.ID, "status", sub.Status)
	publish(ctx, s.events, events.Event{
		Type: events.CollectionUnlocked, SubjectID: sub.ID, MemberID: sub.MemberID,
		Status: string(sub.Status), At: s.clock.Now(),
	})
	return sub, nil
}

// Get retrieves a submission by ID.
func (s *CollectionService) Get(ctx context.Context, submissionID string) (*models.CollectionSubmission, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		logFailure("GetCollection failed", err, "submission_id", submissionID)
		return nil, err
	}
	return sub, nil
}

// List returns submissions most recent first. An empty memberID lists all.
func (s *CollectionService) List(ctx context.Context, memberID string) ([]*models.CollectionSubmission, error) {
	subs, err := s.store.ListSubmissions(ctx, memberID)
	if err != nil {
		logFailure("ListCollections failed", err, "member_id", memberID)
		return nil, err
	}

	for i, j := 0, len(subs)-1; i < j; i, j = i+1, j-1 {
		subs[i], subs[j] = subs[j], subs[i]
	}
	return subs, nil
}

func (s *CollectionService) storeReceipt(ctx context.Context, memberID string, r *ReceiptUpload) (string, error) {
	if s.receipts == nil {
		return "", fmt.Errorf("%w: receipt uploads are not enabled", models.ErrValidation)
	}

	ref, err := s.receipts.Put(ctx, memberID, r.Filename, r.ContentType, bytes.NewReader(r.Data))
	if err != nil {
		return "", fmt.Errorf("failed to store receipt: %w", err)
	}
	slog.Info("Receipt stored", "member_id", memberID, "ref", ref, "size", len(r.Data))
	return ref, nil
}

// discardReceipt removes a receipt uploaded for a submission that was not
// recorded. An empty ref is a no-op.
func (s *CollectionService) discardReceipt(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.receipts.Delete(context.WithoutCancel(ctx), ref); err != nil {
		slog.Error("Failed to discard receipt", "ref", ref, "error", err)
	}
}
