package models

import (
	"fmt"
	"sort"
	"time"
)

// Gateway identifies how a collection was paid.
type Gateway string

const (
	GatewayMoMo   Gateway = "MOMO"
	GatewayPayPal Gateway = "PAYPAL"
	GatewayManual Gateway = "MANUAL"
	GatewayNone   Gateway = "NONE"
)

// Automated reports whether the gateway confirms payment on submission.
func (g Gateway) Automated() bool {
	return g == GatewayMoMo || g == GatewayPayPal
}

// Valid reports whether g is a known gateway.
func (g Gateway) Valid() bool {
	switch g {
	case GatewayMoMo, GatewayPayPal, GatewayManual, GatewayNone:
		return true
	}
	return false
}

// DayLayout is the calendar-day format used for selected days.
const DayLayout = "2006-01-02"

// CollectionSubmission is a member's request to record one or more days of
// contribution. Also known as a hub payment.
type CollectionSubmission struct {
	ID         string `json:"id"`
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`

	// SelectedDays are calendar days in DayLayout, deduplicated and sorted.
	SelectedDays []string `json:"selectedDays"`

	Amount Money `json:"amount"`

	// DailyRate is the rate in effect when the submission was made. The
	// adjudication comparison uses it rather than the current rate.
	DailyRate Money `json:"dailyRate"`

	Gateway       Gateway `json:"gateway"`
	TransactionID string  `json:"transactionId,omitempty"`

	// CollectionDate is the optional requested payout date.
	CollectionDate *time.Time `json:"collectionDate,omitempty"`

	Status    PaymentStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	IsLocked  bool          `json:"isLocked"`

	// ReceiptRef is an opaque receipt store reference. Never interpreted.
	ReceiptRef string `json:"receiptRef,omitempty"`

	Version int64 `json:"version"`
}

// ExpectedAmount is the amount owed for the selected days at the submission rate.
func (s *CollectionSubmission) ExpectedAmount() Money {
	return s.DailyRate.Times(len(s.SelectedDays))
}

// Clone returns a deep copy of s.
func (s *CollectionSubmission) Clone() *CollectionSubmission {
	c := *s
	c.SelectedDays = append([]string(nil), s.SelectedDays...)
	if s.CollectionDate != nil {
		t := *s.CollectionDate
		c.CollectionDate = &t
	}
	return &c
}

// NormalizeDays validates each day against DayLayout and returns the sorted,
// deduplicated set.
func NormalizeDays(days []string) ([]string, error) {
	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		t, err := time.Parse(DayLayout, d)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid day %q", ErrValidation, d)
		}
		key := t.Format(DayLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	sort.Strings(out)
	return out, nil
}
