// Package datasource detects backlog sources (SQLite databases, JSONL and
// JSON files), validates them and picks the one to load.
package datasource

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database with an items table
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONL is one JSON object per line
	SourceTypeJSONL SourceType = "jsonl"
	// SourceTypeJSON is a JSON array of items
	SourceTypeJSON SourceType = "json"
)

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite = 100
	PriorityJSONL  = 50
	PriorityJSON   = 40
)

// DataSource represents a potential source of work items
type DataSource struct {
	Type     SourceType `json:"type"`
	Path     string     `json:"path"`
	Priority int        `json:"priority"`
	ModTime  time.Time  `json:"mod_time"`
	Size     int64      `json:"size"`
	// Valid and ValidationError are set by ValidateSource.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	ItemCount       int    `json:"item_count"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, items=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.ItemCount, status)
}

var sqliteExts = map[string]bool{".db": true, ".sqlite": true, ".sqlite3": true}

// sqliteMagic is the header of every SQLite 3 database file.
const sqliteMagic = "SQLite format 3\x00"

// Detect classifies a single file by extension, falling back to sniffing
// its first bytes.
func Detect(path string) (DataSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("cannot stat source: %w", err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("source %s is a directory", path)
	}
	src := DataSource{Path: path, ModTime: info.ModTime(), Size: info.Size()}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case sqliteExts[ext]:
		src.Type = SourceTypeSQLite
	case ext == ".jsonl" || ext == ".ndjson":
		src.Type = SourceTypeJSONL
	case ext == ".json":
		src.Type = SourceTypeJSON
	default:
		t, err := sniff(path)
		if err != nil {
			return DataSource{}, err
		}
		src.Type = t
	}
	src.Priority = priorityOf(src.Type)
	return src, nil
}

func sniff(path string) (SourceType, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open source: %w", err)
	}
	defer f.Close()
	br := bufio.NewReader(f)
	head, _ := br.Peek(len(sqliteMagic))
	if string(head) == sqliteMagic {
		return SourceTypeSQLite, nil
	}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return SourceTypeJSONL, nil
		}
		switch b {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF:
			continue
		case '[':
			return SourceTypeJSON, nil
		default:
			return SourceTypeJSONL, nil
		}
	}
}

func priorityOf(t SourceType) int {
	switch t {
	case SourceTypeSQLite:
		return PrioritySQLite
	case SourceTypeJSONL:
		return PriorityJSONL
	default:
		return PriorityJSON
	}
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// Dir is the directory to scan (cwd if empty)
	Dir string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Logger receives discovery messages when set
	Logger func(msg string)
}

// DiscoverSources lists every backlog source in a directory, freshest first;
// equal modification times go to the more authoritative type.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}
	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !sqliteExts[ext] && ext != ".jsonl" && ext != ".ndjson" && ext != ".json" {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".tmp-") {
			continue
		}
		src, err := Detect(filepath.Join(dir, name))
		if err != nil {
			logf("skipping %s: %v", name, err)
			continue
		}
		logf("found %s source: %s (mod=%s)", src.Type, src.Path, src.ModTime.Format(time.RFC3339))
		sources = append(sources, src)
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil {
				logf("validation failed for %s: %v", sources[i].Path, err)
			}
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
	logf("discovered %d sources in %s", len(sources), dir)
	return sources, nil
}
