// Package model defines the backlog records rendered by wsjfboard: metric
// triples, work items and the WSJF score derived from them.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Slot names for the size triple.
const (
	SlotComplexity = "complexity"
	SlotEffort     = "effort"
	SlotDoubt      = "doubt"
)

// Slot names for the cost-of-delay triple.
const (
	SlotBusinessValue   = "business_value"
	SlotTimeCriticality = "time_criticality"
	SlotRiskReduction   = "risk_reduction"
)

// SizeSlots lists the size slot names in triple order.
var SizeSlots = [3]string{SlotComplexity, SlotEffort, SlotDoubt}

// CostOfDelaySlots lists the cost-of-delay slot names in triple order.
var CostOfDelaySlots = [3]string{SlotBusinessValue, SlotTimeCriticality, SlotRiskReduction}

// View selects which triple of a WorkItem is being looked at.
type View string

const (
	ViewSize        View = "size"
	ViewCostOfDelay View = "cod"
)

// IsValid reports whether v names a known view.
func (v View) IsValid() bool {
	return v == ViewSize || v == ViewCostOfDelay
}

// Slots returns the slot names for the view.
func (v View) Slots() [3]string {
	if v == ViewCostOfDelay {
		return CostOfDelaySlots
	}
	return SizeSlots
}

// MetricTriple holds three sub-estimates. Zero means "not yet estimated".
type MetricTriple [3]float64

// Clamp returns a copy with negative and non-finite values replaced by 0.
func (t MetricTriple) Clamp() MetricTriple {
	var out MetricTriple
	for i, v := range t {
		out[i] = NonNegative(v)
	}
	return out
}

// Complete reports whether all three slots are strictly positive.
func (t MetricTriple) Complete() bool {
	return t.Present() == 3
}

// Present counts the strictly positive slots.
func (t MetricTriple) Present() int {
	n := 0
	for _, v := range t.Clamp() {
		if v > 0 {
			n++
		}
	}
	return n
}

// Sum returns the sum of the clamped slots. ok is false when the triple is
// incomplete.
func (t MetricTriple) Sum() (sum float64, ok bool) {
	if !t.Complete() {
		return 0, false
	}
	c := t.Clamp()
	return c[0] + c[1] + c[2], true
}

// NonNegative clamps v to a finite value >= 0. NaN and infinities become 0.
func NonNegative(v float64) float64 {
	if v > 0 && !math.IsInf(v, 1) {
		return v
	}
	return 0
}

// WorkItem is a single backlog entry (a PBI).
type WorkItem struct {
	ID          string
	Title       string
	Size        MetricTriple
	CostOfDelay MetricTriple
	Color       string // theme token or hex color
	Rank        int    // 1-based priority rank, 0 when unassigned
	Notes       string
}

// Triple returns the triple for the given view.
func (w WorkItem) Triple(v View) MetricTriple {
	if v == ViewCostOfDelay {
		return w.CostOfDelay
	}
	return w.Size
}

// JobSize returns the sum of the size triple, or ok=false if incomplete.
func (w WorkItem) JobSize() (float64, bool) {
	return w.Size.Sum()
}

// CoD returns the sum of the cost-of-delay triple, or ok=false if incomplete.
func (w WorkItem) CoD() (float64, bool) {
	return w.CostOfDelay.Sum()
}

// Estimated reports whether both triples are complete.
func (w WorkItem) Estimated() bool {
	return w.Size.Complete() && w.CostOfDelay.Complete()
}

// WSJF returns cost of delay divided by job size. ok is false when either
// triple is incomplete.
func (w WorkItem) WSJF() (float64, bool) {
	size, ok := w.JobSize()
	if !ok || size <= 0 {
		return 0, false
	}
	cod, ok := w.CoD()
	if !ok {
		return 0, false
	}
	return cod / size, true
}

// Validation errors.
var (
	ErrMissingID    = errors.New("missing id")
	ErrMissingTitle = errors.New("missing title")
)

// Validate checks the fields a loader must supply. Estimates are not
// validated: incomplete and negative values are legal input.
func (w WorkItem) Validate() error {
	if strings.TrimSpace(w.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(w.Title) == "" {
		return fmt.Errorf("item %s: %w", w.ID, ErrMissingTitle)
	}
	if w.Rank < 0 {
		return fmt.Errorf("item %s: negative rank %d", w.ID, w.Rank)
	}
	return nil
}

// ByID indexes items by ID. Later duplicates win.
func ByID(items []WorkItem) map[string]WorkItem {
	out := make(map[string]WorkItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out
}
