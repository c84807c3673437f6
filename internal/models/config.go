package models

import "time"

// Interval is the rotation cadence of the group.
type Interval string

const (
	IntervalWeekly  Interval = "WEEKLY"
	IntervalMonthly Interval = "MONTHLY"
)

// Valid reports whether i is a known interval.
func (i Interval) Valid() bool {
	return i == IntervalWeekly || i == IntervalMonthly
}

// GroupConfig holds the group-wide parameters read by every component.
type GroupConfig struct {
	// Name is the display name of the group (e.g., "Ishyirahamwe Twangumugayo").
	Name string `json:"name"`

	// DailyRate is the contribution owed per selected day. Always > 0.
	DailyRate Money `json:"dailyRate"`

	// ContributionAmount is the nominal contribution per interval.
	ContributionAmount Money `json:"contributionAmount"`

	// Currency is an ISO currency code such as "RWF".
	Currency string `json:"currency"`

	Interval     Interval  `json:"interval"`
	StartDate    time.Time `json:"startDate"`
	TotalMembers int       `json:"totalMembers"`

	Version int64 `json:"version"`
}

// ConfigPatch is a partial update of GroupConfig. Nil fields are left as-is.
type ConfigPatch struct {
	Name               *string    `json:"name,omitempty"`
	DailyRate          *Money     `json:"dailyRate,omitempty"`
	ContributionAmount *Money     `json:"contributionAmount,omitempty"`
	Currency           *string    `json:"currency,omitempty"`
	Interval           *Interval  `json:"interval,omitempty"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	TotalMembers       *int       `json:"totalMembers,omitempty"`
}
