// Package events publishes treasury state changes to interested consumers.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Type names a state change. It doubles as the AMQP routing key.
type Type string

const (
	CollectionSubmitted   Type = "collection.submitted"
	CollectionAdjudicated Type = "collection.adjudicated"
	CollectionUnlocked    Type = "collection.unlocked"
	DatesCommitted        Type = "member.dates_committed"
	DatesUnlocked         Type = "member.dates_unlocked"
	ConfigUpdated         Type = "config.updated"
	AnnouncementCreated   Type = "announcement.created"
)

// Event is the message body sent for every state change.
type Event struct {
	Type      Type      `json:"type"`
	SubjectID string    `json:"subjectId"`
	MemberID  string    `json:"memberId,omitempty"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

// ToJSON encodes the event body.
func (e Event) ToJSON() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
