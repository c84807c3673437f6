package calculator

import (
	"testing"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

func TestCalculateTotals(t *testing.T) {
	entries := []*models.Contribution{
		{ID: "c1", MemberID: "1", Amount: 5000, Status: models.StatusVerified},
		{ID: "c2", MemberID: "2", Amount: 5000, Status: models.StatusVerified},
		{ID: "c3", MemberID: "3", Amount: 5000, Status: models.StatusPending},
		{ID: "c4", MemberID: "2", Amount: 3000, Status: models.StatusVerified},
	}

	totals := CalculateTotals(entries)

	if totals.Pool != 13000 {
		t.Errorf("Pool = %d, want 13000", totals.Pool)
	}
	if len(totals.Members) != 2 {
		t.Fatalf("Members = %d, want 2 (pending entries are not savings)", len(totals.Members))
	}
	if totals.Members[0].MemberID != "1" || totals.Members[1].MemberID != "2" {
		t.Errorf("Members not sorted by id: %+v", totals.Members)
	}
	if got := totals.SavedBy("2"); got != 8000 {
		t.Errorf("SavedBy(2) = %d, want 8000", got)
	}
	if got := totals.Members[1].Entries; got != 2 {
		t.Errorf("member 2 entries = %d, want 2", got)
	}
	if got := totals.SavedBy("3"); got != 0 {
		t.Errorf("SavedBy(3) = %d, want 0", got)
	}
}

func TestCalculateTotals_Empty(t *testing.T) {
	totals := CalculateTotals(nil)
	if totals.Pool != 0 {
		t.Errorf("Pool = %d, want 0", totals.Pool)
	}
	if len(totals.Members) != 0 {
		t.Errorf("Members = %d, want 0", len(totals.Members))
	}
}
