package dashboard

import (
	"sort"
	"strings"

	"github.com/nithinshettyy/appointment-system/appointment"
)

// FilterAll is the status filter value that matches every status.
const FilterAll = "All"

// Query holds the two user-supplied view parameters: a free-text search over
// student name and number, and a status filter.
type Query struct {
	Search string
	Status string
}

// Counts summarises the whole cache regardless of the active query. Withdrawn
// requests are tallied separately and never counted into the other three.
type Counts struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Withdrawn int `json:"withdrawn"`
}

// View is what the presentation layer renders: the filtered, ordered
// sequence plus the full-cache counts. NoMatches distinguishes "nothing
// matched" from an empty cache still loading (Loaded=false).
type View struct {
	Items     []appointment.Request
	Counts    Counts
	Loaded    bool
	NoMatches bool
}

// Matches reports whether a record satisfies both query predicates. The text
// match is a case-insensitive substring over student name OR student number
// (empty query matches everything); the status filter is an exact,
// case-sensitive comparison unless it is FilterAll.
func Matches(r appointment.Request, q Query) bool {
	search := strings.ToLower(q.Search)
	matchSearch := search == "" ||
		strings.Contains(strings.ToLower(r.StudentName), search) ||
		strings.Contains(strings.ToLower(r.StudentNumber), search)

	status := q.Status
	if status == "" {
		status = FilterAll
	}
	matchStatus := status == FilterAll || string(r.Status) == status

	return matchSearch && matchStatus
}

// BuildView computes the visible subset and display order from a cache
// snapshot and the query. It is deterministic and idempotent: unchanged
// inputs always produce an identical ordered sequence and identical counts.
//
// Ordering: status priority ascending (Pending, Rejected, Approved, rest);
// among Pending records, oldest creation first; all other ties keep cache
// order.
func BuildView(records []appointment.Request, q Query) View {
	view := View{Loaded: true}

	for _, r := range records {
		switch r.Status {
		case appointment.StatusPending:
			view.Counts.Pending++
		case appointment.StatusApproved:
			view.Counts.Approved++
		case appointment.StatusRejected:
			view.Counts.Rejected++
		case appointment.StatusWithdrawn:
			view.Counts.Withdrawn++
		}
	}

	items := []appointment.Request{}
	for _, r := range records {
		if Matches(r, q) {
			items = append(items, r)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Status.Priority(), items[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		if items[i].Status == appointment.StatusPending {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return false
	})

	view.Items = items
	view.NoMatches = len(items) == 0
	return view
}
