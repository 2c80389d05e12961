// Package priority orders work items for processing and assigns ranks.
package priority

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// SortKey selects the processing order.
type SortKey string

const (
	// SortRank orders by the externally assigned rank; unranked items last.
	SortRank SortKey = "rank"
	// SortWSJF orders by descending WSJF score.
	SortWSJF SortKey = "wsjf"
	// SortInput keeps the input order.
	SortInput SortKey = "input"
)

// ParseSortKey parses a sort key name. Empty selects SortRank.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRank, nil
	case SortRank, SortWSJF, SortInput:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want rank, wsjf or input)", s)
	}
}

// ByWSJF returns a copy of items sorted by descending WSJF. Ties go to the
// shorter job, then to input order. Items without a score follow all scored
// items in input order.
func ByWSJF(items []model.WorkItem) []model.WorkItem {
	out := append([]model.WorkItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		si, oki := out[i].WSJF()
		sj, okj := out[j].WSJF()
		switch {
		case oki != okj:
			return oki
		case !oki:
			return false
		case si != sj:
			return si > sj
		}
		ji, _ := out[i].JobSize()
		jj, _ := out[j].JobSize()
		return ji < jj
	})
	return out
}

// ByRank returns a copy of items sorted by ascending rank. Items with rank 0
// follow all ranked items in input order.
func ByRank(items []model.WorkItem) []model.WorkItem {
	out := append([]model.WorkItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Rank, out[j].Rank
		if (ri > 0) != (rj > 0) {
			return ri > 0
		}
		return ri > 0 && ri < rj
	})
	return out
}

// Order sorts a copy of items by key.
func Order(items []model.WorkItem, key SortKey) []model.WorkItem {
	switch key {
	case SortWSJF:
		return ByWSJF(items)
	case SortInput:
		return append([]model.WorkItem(nil), items...)
	default:
		return ByRank(items)
	}
}

// AssignRanks returns a copy of items, in input order, whose ranks are their
// 1-based positions in WSJF order.
func AssignRanks(items []model.WorkItem) []model.WorkItem {
	ranks := make(map[string]int, len(items))
	for i, it := range ByWSJF(items) {
		ranks[it.ID] = i + 1
	}
	out := append([]model.WorkItem(nil), items...)
	for i := range out {
		out[i].Rank = ranks[out[i].ID]
	}
	return out
}

// EnsureRanks assigns WSJF ranks only when no item carries a rank yet.
func EnsureRanks(items []model.WorkItem) []model.WorkItem {
	for _, it := range items {
		if it.Rank > 0 {
			return items
		}
	}
	return AssignRanks(items)
}

// Queue returns the fully estimated items in processing order: the input
// to a delay-cost simulation.
func Queue(items []model.WorkItem, key SortKey) []model.WorkItem {
	ordered := Order(items, key)
	out := ordered[:0]
	for _, it := range ordered {
		if it.Estimated() {
			out = append(out, it)
		}
	}
	return out
}
