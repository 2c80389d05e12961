package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// ItemDiff lists the differences between two snapshots of a backlog.
type ItemDiff struct {
	Added   []string
	Removed []string
	// Changed holds items whose title, estimates, color or rank differ.
	Changed []string
	// Reordered is set when the common items appear in a different order.
	Reordered bool
}

// Empty reports whether the snapshots are equivalent.
func (d ItemDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 && !d.Reordered
}

// Summary returns a one-line human-readable summary.
func (d ItemDiff) Summary() string {
	if d.Empty() {
		return "no changes"
	}
	var parts []string
	add := func(label string, ids []string) {
		if len(ids) == 0 {
			return
		}
		if len(ids) <= 5 {
			parts = append(parts, fmt.Sprintf("%s %s", label, strings.Join(ids, ", ")))
			return
		}
		parts = append(parts, fmt.Sprintf("%s %d items", label, len(ids)))
	}
	add("added", d.Added)
	add("removed", d.Removed)
	add("changed", d.Changed)
	if d.Reordered {
		parts = append(parts, "reordered")
	}
	return strings.Join(parts, "; ")
}

// DiffItems compares two snapshots by item ID.
func DiffItems(before, after []model.WorkItem) ItemDiff {
	var d ItemDiff
	old := model.ByID(before)
	cur := model.ByID(after)

	for id, it := range cur {
		prev, ok := old[id]
		switch {
		case !ok:
			d.Added = append(d.Added, id)
		case prev.Title != it.Title || prev.Size != it.Size || prev.CostOfDelay != it.CostOfDelay ||
			prev.Color != it.Color || prev.Rank != it.Rank:
			d.Changed = append(d.Changed, id)
		}
	}
	for id := range old {
		if _, ok := cur[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)

	common := func(items []model.WorkItem, other map[string]model.WorkItem) []string {
		var ids []string
		for _, it := range items {
			if _, ok := other[it.ID]; ok {
				ids = append(ids, it.ID)
			}
		}
		return ids
	}
	a, b := common(before, cur), common(after, old)
	d.Reordered = strings.Join(a, "\x00") != strings.Join(b, "\x00")
	return d
}
