package models

import "time"

// Announcement is an append-only message from an admin. An empty
// TargetMemberID broadcasts to everyone.
type Announcement struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	Sender         string    `json:"sender"`
	TargetMemberID string    `json:"targetMemberId,omitempty"`
}

// VisibleTo reports whether the announcement is shown to viewerID.
func (a *Announcement) VisibleTo(viewerID string) bool {
	return a.TargetMemberID == "" || a.TargetMemberID == viewerID
}
