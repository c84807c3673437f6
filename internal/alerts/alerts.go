// Package alerts derives the time-windowed notification feed shown to a
// member from action plans, verified collections and announcements.
//
// ComputeAlerts is pure and keeps no state: urgency depends on the wall
// clock, so callers recompute on every read.
package alerts

import (
	"fmt"
	"sort"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

const (
	// UrgencyWindow is how far ahead a deadline counts as urgent.
	UrgencyWindow = 48 * time.Hour

	// RecencyWindow is how long an announcement stays in the feed.
	RecencyWindow = 24 * time.Hour

	// PreviewLength is the number of characters of an announcement shown in an alert.
	PreviewLength = 60
)

// Category groups alerts for display.
type Category string

const (
	CategoryUrgent     Category = "urgent"
	CategoryCollection Category = "collection"
	CategoryBroadcast  Category = "broadcast"
)

// Alert is one entry of the notification feed.
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// IsUrgent reports whether t falls in (now, now+48h].
func IsUrgent(t, now time.Time) bool {
	d := t.Sub(now)
	return d > 0 && d <= UrgencyWindow
}

// IsRecent reports whether an announcement sent at ts is less than 24h old.
func IsRecent(ts, now time.Time) bool {
	return now.Sub(ts) < RecencyWindow
}

// Truncate shortens s to PreviewLength characters and marks the cut with "...".
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewLength {
		return s
	}
	return string(runes[:PreviewLength]) + "..."
}

// ComputeAlerts builds the feed for viewerID. An empty viewerID sees only
// broadcasts. The result is ordered by each alert's own timestamp, newest
// first; deadlines are not re-ranked by how close they are.
func ComputeAlerts(
	plans []*models.ActionPlan,
	submissions []*models.CollectionSubmission,
	announcements []*models.Announcement,
	now time.Time,
	viewerID string,
) []Alert {
	var out []Alert

	for _, ap := range plans {
		if ap.Status != models.PlanPlanned || !IsUrgent(ap.TargetDate, now) {
			continue
		}
		out = append(out, Alert{
			ID:    "alert-" + ap.ID,
			Title: ap.Title,
			Text: fmt.Sprintf("Reminder: %s is scheduled for %s at %s",
				ap.Title, ap.TargetDate.Format("Jan 2, 2006"), ap.TargetDate.Format("15:04")),
			Category:  CategoryUrgent,
			Timestamp: ap.TargetDate,
		})
	}

	for _, hp := range submissions {
		if hp.Status != models.StatusVerified || hp.CollectionDate == nil || !IsUrgent(*hp.CollectionDate, now) {
			continue
		}
		out = append(out, Alert{
			ID:    "collect-" + hp.ID,
			Title: "Collection Reminder",
			Text: fmt.Sprintf("Collect your savings for %d day(s) on %s",
				len(hp.SelectedDays), hp.CollectionDate.Format("Jan 2, 2006")),
			Category:  CategoryCollection,
			Timestamp: *hp.CollectionDate,
		})
	}

	for _, a := range announcements {
		if !IsRecent(a.Timestamp, now) || !a.VisibleTo(viewerID) {
			continue
		}
		out = append(out, Alert{
			ID:        "ann-" + a.ID,
			Title:     "New announcement: " + a.Title,
			Text:      Truncate(a.Message),
			Category:  CategoryBroadcast,
			Timestamp: a.Timestamp,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
