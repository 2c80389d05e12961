// Package loader reads and writes backlog files: a JSON array of work items
// or one JSON object per line (JSONL).
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// BacklogEnvVar overrides backlog discovery with an explicit file path.
const BacklogEnvVar = "WSJF_BACKLOG"

// PreferredNames defines the lookup order for backlog files in a directory.
var PreferredNames = []string{"backlog.jsonl", "backlog.json", "items.jsonl", "items.json"}

// ErrNoItems is returned when a backlog holds no valid item.
var ErrNoItems = errors.New("no work items found")

// SizeRecord is the wire form of a size triple.
type SizeRecord struct {
	Complexity float64 `json:"complexity"`
	Effort     float64 `json:"effort"`
	Doubt      float64 `json:"doubt"`
}

// CoDRecord is the wire form of a cost-of-delay triple.
type CoDRecord struct {
	BusinessValue   float64 `json:"business_value"`
	TimeCriticality float64 `json:"time_criticality"`
	RiskReduction   float64 `json:"risk_reduction"`
}

// Record is the wire form of a work item.
type Record struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Size  SizeRecord `json:"size"`
	CoD   CoDRecord  `json:"cod"`
	Color string     `json:"color,omitempty"`
	Rank  int        `json:"rank,omitempty"`
	Notes string     `json:"notes,omitempty"`
}

// Item converts the record. Estimates are kept as given; clamping happens
// at render time.
func (r Record) Item() model.WorkItem {
	return model.WorkItem{
		ID:          strings.TrimSpace(r.ID),
		Title:       r.Title,
		Size:        model.MetricTriple{r.Size.Complexity, r.Size.Effort, r.Size.Doubt},
		CostOfDelay: model.MetricTriple{r.CoD.BusinessValue, r.CoD.TimeCriticality, r.CoD.RiskReduction},
		Color:       r.Color,
		Rank:        r.Rank,
		Notes:       r.Notes,
	}
}

// RecordOf converts an item to its wire form.
func RecordOf(it model.WorkItem) Record {
	return Record{
		ID:    it.ID,
		Title: it.Title,
		Size:  SizeRecord{it.Size[0], it.Size[1], it.Size[2]},
		CoD:   CoDRecord{it.CostOfDelay[0], it.CostOfDelay[1], it.CostOfDelay[2]},
		Color: it.Color,
		Rank:  it.Rank,
		Notes: it.Notes,
	}
}

// FindBacklogPath locates a backlog file in dir. The WSJF_BACKLOG variable
// wins when set. Otherwise PreferredNames are tried in order, then any
// non-empty .jsonl or .json file.
func FindBacklogPath(dir string) (string, error) {
	if p := os.Getenv(BacklogEnvVar); p != "" {
		return p, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read backlog directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".jsonl") && !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".tmp-") {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no backlog file found in %s", dir)
	}

	nonEmpty := func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.Size() > 0
	}
	for _, preferred := range PreferredNames {
		for _, name := range candidates {
			if name == preferred && nonEmpty(name) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	for _, name := range candidates {
		if nonEmpty(name) {
			return filepath.Join(dir, name), nil
		}
	}
	return filepath.Join(dir, candidates[0]), nil
}

// DefaultMaxBufferSize is the default maximum JSONL line size (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures parsing.
type ParseOptions struct {
	// WarningHandler receives messages about skipped records. If nil,
	// warnings go to os.Stderr unless WSJF_QUIET=1.
	WarningHandler func(string)

	// BufferSize is the maximum JSONL line size. Longer lines are skipped.
	BufferSize int

	// Filter optionally drops parsed items. Return true to keep.
	Filter func(*model.WorkItem) bool
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	if os.Getenv("WSJF_QUIET") == "1" {
		return func(string) {}
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadItemsFromFile reads a backlog file.
func LoadItemsFromFile(path string) ([]model.WorkItem, error) {
	return LoadItemsFromFileWithOptions(path, ParseOptions{})
}

// LoadItemsFromFileWithOptions reads a backlog file with custom options.
func LoadItemsFromFileWithOptions(path string, opts ParseOptions) ([]model.WorkItem, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no backlog found at %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backlog file: %w", err)
	}
	defer f.Close()
	return ParseItemsWithOptions(f, opts)
}

// ParseItems parses a JSON array or JSONL stream.
func ParseItems(r io.Reader) ([]model.WorkItem, error) {
	return ParseItemsWithOptions(r, ParseOptions{})
}

// ParseItemsWithOptions parses a JSON array or JSONL stream. The format is
// picked from the first non-blank byte. Malformed and invalid records are
// skipped with a warning; an I/O error aborts.
func ParseItemsWithOptions(r io.Reader, opts ParseOptions) ([]model.WorkItem, error) {
	size := opts.BufferSize
	if size <= 0 {
		size = DefaultMaxBufferSize
	}
	br := bufio.NewReaderSize(r, size)
	first, err := peekFirst(br)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading backlog: %w", err)
	}
	if first == '[' {
		return parseArray(br, opts)
	}
	return parseLines(br, size, opts)
}

// peekFirst skips a BOM and leading whitespace and returns the next byte
// without consuming it.
func peekFirst(br *bufio.Reader) (byte, error) {
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, bom) {
		_, _ = br.Discard(3)
	}
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.Discard(1)
		default:
			return b[0], nil
		}
	}
}

func parseArray(r io.Reader, opts ParseOptions) ([]model.WorkItem, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode backlog array: %w", err)
	}
	warn := opts.warn()
	items := make([]model.WorkItem, 0, len(raw))
	for i, msg := range raw {
		if it, ok := decodeRecord(msg, fmt.Sprintf("element %d", i), warn, opts); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func parseLines(reader *bufio.Reader, maxCapacity int, opts ParseOptions) ([]model.WorkItem, error) {
	warn := opts.warn()
	var items []model.WorkItem
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading backlog stream at line %d: %w", lineNum, err)
		}
		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if it, ok := decodeRecord(line, fmt.Sprintf("line %d", lineNum), warn, opts); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func decodeRecord(data []byte, where string, warn func(string), opts ParseOptions) (model.WorkItem, bool) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		warn(fmt.Sprintf("skipping malformed JSON on %s: %v", where, err))
		return model.WorkItem{}, false
	}
	it := rec.Item()
	if err := it.Validate(); err != nil {
		warn(fmt.Sprintf("skipping invalid item on %s: %v", where, err))
		return model.WorkItem{}, false
	}
	if opts.Filter != nil && !opts.Filter(&it) {
		return model.WorkItem{}, false
	}
	return it, true
}

var bom = []byte{0xEF, 0xBB, 0xBF}
