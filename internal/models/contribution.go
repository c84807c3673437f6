package models

import "time"

// PaymentStatus is shared by ledger entries and collection submissions.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusVerified PaymentStatus = "VERIFIED"
	StatusFailed   PaymentStatus = "FAILED"
	StatusMismatch PaymentStatus = "MISMATCH"
	StatusRejected PaymentStatus = "REJECTED"
)

// Contribution is an immutable ledger entry. Entries are only appended as the
// side effect of a verified collection submission.
type Contribution struct {
	ID       string        `json:"id"`
	MemberID string        `json:"memberId"`
	Amount   Money         `json:"amount"`
	Date     time.Time     `json:"date"`
	Status   PaymentStatus `json:"status"`

	// CycleNumber is the rotation cycle the contribution counts towards.
	CycleNumber int `json:"cycleNumber"`

	// SubmissionID links the entry back to the collection that produced it.
	SubmissionID string `json:"submissionId"`
}
