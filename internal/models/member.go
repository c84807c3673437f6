package models

import "time"

// Role is a member's pre-validated role in the group.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// MaxPayoutDates is the number of payout dates each member picks per season.
const MaxPayoutDates = 3

// Member is a participant in the rotation.
type Member struct {
	// ID is the unique identifier for the member.
	ID string `json:"id"`

	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`

	// PayoutRank is the member's fixed position in the rotation (1..TotalMembers).
	PayoutRank int `json:"payoutRank"`

	// PayoutDates holds up to MaxPayoutDates dates, sorted chronologically.
	PayoutDates []time.Time `json:"payoutDates"`

	// DatesLocked is true once the member committed exactly MaxPayoutDates dates.
	// Only an admin unlock clears it; the dates are kept.
	DatesLocked bool `json:"datesLocked"`

	// Version is incremented by the store on every successful update.
	Version int64 `json:"version"`
}

// HasPayoutDate reports whether t is one of the member's selected dates.
func (m *Member) HasPayoutDate(t time.Time) bool {
	for _, d := range m.PayoutDates {
		if d.Equal(t) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of m.
func (m *Member) Clone() *Member {
	c := *m
	c.PayoutDates = append([]time.Time(nil), m.PayoutDates...)
	return &c
}
