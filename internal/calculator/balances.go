package calculator

import (
	"sort"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

// MemberTotal is the verified savings attributed to one member.
type MemberTotal struct {
	MemberID string       `json:"memberId"`
	Saved    models.Money `json:"saved"`
	Entries  int          `json:"entries"`
}

// LedgerTotals summarizes the contribution ledger.
type LedgerTotals struct {
	// Pool is the sum of all VERIFIED contributions.
	Pool models.Money `json:"pool"`

	// Members holds per-member totals sorted by member ID.
	Members []MemberTotal `json:"members"`
}

// CalculateTotals aggregates verified contributions into the pool total and
// per-member saved amounts. Entries in any other status are ignored.
func CalculateTotals(entries []*models.Contribution) LedgerTotals {
	byMember := make(map[string]*MemberTotal)
	var pool models.Money

	for _, c := range entries {
		if c.Status != models.StatusVerified {
			continue
		}
		pool += c.Amount

		mt, ok := byMember[c.MemberID]
		if !ok {
			mt = &MemberTotal{MemberID: c.MemberID}
			byMember[c.MemberID] = mt
		}
		mt.Saved += c.Amount
		mt.Entries++
	}

	members := make([]MemberTotal, 0, len(byMember))
	for _, mt := range byMember {
		members = append(members, *mt)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].MemberID < members[j].MemberID
	})

	return LedgerTotals{Pool: pool, Members: members}
}

// SavedBy returns the verified total for one member.
func (t LedgerTotals) SavedBy(memberID string) models.Money {
	for _, m := range t.Members {
		if m.MemberID == memberID {
			return m.Saved
		}
	}
	return 0
}
