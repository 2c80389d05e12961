// Package testutil provides deterministic backlog generators and scene
// assertions for tests.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/wsjfboard/pkg/loader"
	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// GeneratorConfig controls item generation.
type GeneratorConfig struct {
	Seed        int64    // Random seed (0 = 42)
	IDPrefix    string   // Prefix for item IDs (default: "PBI")
	MaxEstimate int      // Estimates are drawn from 1..MaxEstimate (default: 13)
	Colors      []string // Color tokens cycled through (default: item palette)
	// IncompleteRatio is the share of items with at least one zero slot.
	IncompleteRatio float64
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		IDPrefix:    "PBI",
		MaxEstimate: 13,
		Colors:      []string{"red", "orange", "yellow", "green", "teal", "blue", "purple"},
	}
}

// Generator creates work item fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	d := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = d.Seed
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = d.IDPrefix
	}
	if cfg.MaxEstimate <= 0 {
		cfg.MaxEstimate = d.MaxEstimate
	}
	if len(cfg.Colors) == 0 {
		cfg.Colors = d.Colors
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Items generates n items with ranks 1..n in generation order.
func (g *Generator) Items(n int) []model.WorkItem {
	items := make([]model.WorkItem, n)
	for i := range items {
		items[i] = model.WorkItem{
			ID:          ItemID(g.cfg.IDPrefix, i),
			Title:       fmt.Sprintf("Item %d", i),
			Size:        g.triple(),
			CostOfDelay: g.triple(),
			Color:       g.cfg.Colors[i%len(g.cfg.Colors)],
			Rank:        i + 1,
		}
		if g.rng.Float64() < g.cfg.IncompleteRatio {
			g.blank(&items[i])
		}
	}
	return items
}

func (g *Generator) triple() model.MetricTriple {
	var t model.MetricTriple
	for i := range t {
		t[i] = float64(1 + g.rng.Intn(g.cfg.MaxEstimate))
	}
	return t
}

// blank zeroes one to three slots of one of the item's triples.
func (g *Generator) blank(it *model.WorkItem) {
	target := &it.Size
	if g.rng.Intn(2) == 1 {
		target = &it.CostOfDelay
	}
	n := 1 + g.rng.Intn(3)
	for _, slot := range g.rng.Perm(3)[:n] {
		target[slot] = 0
	}
}

// Partial returns an item whose size triple has exactly present non-zero
// slots (0..3) and a complete cost-of-delay triple.
func Partial(id string, present int) model.WorkItem {
	var size model.MetricTriple
	for i := 0; i < present && i < 3; i++ {
		size[i] = float64(i + 1)
	}
	return model.WorkItem{
		ID:          id,
		Title:       "Partial " + id,
		Size:        size,
		CostOfDelay: model.MetricTriple{1, 2, 3},
	}
}

// WorkedExample returns A(job size 2, cod 10) and B(job size 3, cod 5),
// ranked in that order.
func WorkedExample() []model.WorkItem {
	return []model.WorkItem{
		{ID: "A", Title: "Alpha", Size: model.MetricTriple{1, 0.5, 0.5}, CostOfDelay: model.MetricTriple{5, 3, 2}, Color: "red", Rank: 1},
		{ID: "B", Title: "Beta", Size: model.MetricTriple{1, 1, 1}, CostOfDelay: model.MetricTriple{2, 2, 1}, Color: "blue", Rank: 2},
	}
}

// ToJSONL serializes items as JSONL in the loader's wire format.
func ToJSONL(items []model.WorkItem) string {
	var b strings.Builder
	for _, it := range items {
		data, err := json.Marshal(loader.RecordOf(it))
		if err != nil {
			continue
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String()
}

// QuickBacklog returns n complete items from the default generator.
func QuickBacklog(n int) []model.WorkItem {
	return NewDefault().Items(n)
}

// ItemID returns the ID for the item at index.
func ItemID(prefix string, index int) string {
	return fmt.Sprintf("%s-%d", prefix, index)
}
