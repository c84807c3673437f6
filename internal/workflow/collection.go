package workflow

import (
	"fmt"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/calculator"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/idgen"
	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// Submission is a member's day selection and payment attempt.
type Submission struct {
	MemberID       string
	MemberName     string
	Days           []string
	Gateway        models.Gateway
	Amount         models.Money
	TransactionID  string
	CollectionDate *time.Time
	ReceiptRef     string
}

// CheckInput validates the submitted amount and requested collection date.
func CheckInput(amount models.Money, collectionDate *time.Time) error {
	if amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", models.ErrValidation)
	}
	if collectionDate != nil {
		return models.CheckTime("collection date", *collectionDate)
	}
	return nil
}

// Prepare validates the parts of a submission that can be checked before the
// receipt is stored and returns the normalized day set.
func Prepare(days []string, gateway models.Gateway, hasReceipt bool) ([]string, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: at least one day must be selected", models.ErrValidation)
	}
	normalized, err := models.NormalizeDays(days)
	if err != nil {
		return nil, err
	}

	switch {
	case !gateway.Valid():
		return nil, fmt.Errorf("%w: unknown gateway %q", models.ErrValidation, gateway)
	case gateway == models.GatewayNone:
		return nil, fmt.Errorf("%w: a payment gateway is required", models.ErrValidation)
	case gateway == models.GatewayManual && !hasReceipt:
		return nil, fmt.Errorf("%w: manual payments require receipt proof", models.ErrValidation)
	}

	return normalized, nil
}

// Submit turns a submission into a collection record. Automated gateways are
// settled immediately: VERIFIED with a ledger entry when the amount matches
// the days at the current rate, MISMATCH otherwise. Manual submissions start
// PENDING and wait for adjudication. The returned contribution is nil unless
// the collection was verified.
func Submit(in Submission, cfg *models.GroupConfig, now time.Time, ids idgen.Generator) (*models.CollectionSubmission, *models.Contribution, error) {
	if err := CheckInput(in.Amount, in.CollectionDate); err != nil {
		return nil, nil, err
	}
	days, err := Prepare(in.Days, in.Gateway, in.ReceiptRef != "")
	if err != nil {
		return nil, nil, err
	}

	id := ids.NewID()
	txID := in.TransactionID
	if txID == "" {
		txID = idgen.Reference(ids)
		if in.Gateway == models.GatewayManual {
			txID = "MAN-" + txID
		}
	}

	sub := &models.CollectionSubmission{
		ID:             id,
		MemberID:       in.MemberID,
		MemberName:     in.MemberName,
		SelectedDays:   days,
		Amount:         in.Amount,
		DailyRate:      cfg.DailyRate,
		Gateway:        in.Gateway,
		TransactionID:  txID,
		CollectionDate: in.CollectionDate,
		Status:         models.StatusPending,
		Timestamp:      now,
		ReceiptRef:     in.ReceiptRef,
	}

	if !in.Gateway.Automated() {
		return sub, nil, nil
	}

	return sub, settle(sub, cfg, now, ids), nil
}

// Adjudicate applies an admin decision to a pending submission. Approval
// compares the amount against the days at the rate in effect at submission:
// a match verifies and returns the ledger entry to append, anything else is
// flagged MISMATCH and locked. Rejection unlocks.
func Adjudicate(sub *models.CollectionSubmission, approve bool, cfg *models.GroupConfig, now time.Time, ids idgen.Generator) (*models.Contribution, error) {
	if sub.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: submission %s is %s, not %s",
			models.ErrInvalidStateTransition, sub.ID, sub.Status, models.StatusPending)
	}

	if !approve {
		sub.Status = models.StatusRejected
		sub.IsLocked = false
		return nil, nil
	}

	return settle(sub, cfg, now, ids), nil
}

// Unlock clears the lock flag without touching the status. It reports
// whether anything changed.
func Unlock(sub *models.CollectionSubmission) bool {
	if !sub.IsLocked {
		return false
	}
	sub.IsLocked = false
	return true
}

// settle locks the submission and verifies it when the amount matches.
func settle(sub *models.CollectionSubmission, cfg *models.GroupConfig, now time.Time, ids idgen.Generator) *models.Contribution {
	sub.IsLocked = true

	expected := calculator.ExpectedAmount(len(sub.SelectedDays), sub.DailyRate)
	if sub.Amount != expected {
		sub.Status = models.StatusMismatch
		return nil
	}

	sub.Status = models.StatusVerified
	return &models.Contribution{
		ID:           ids.NewID(),
		MemberID:     sub.MemberID,
		Amount:       sub.Amount,
		Date:         now,
		Status:       models.StatusVerified,
		CycleNumber:  calculator.CycleNumber(cfg, now),
		SubmissionID: sub.ID,
	}
}
