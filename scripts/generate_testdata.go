//go:build ignore

// generate_testdata.go creates sample backlogs for manual runs and benchmarks.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/backlog/small.jsonl    (12 items, a quarter partly estimated)
//	testdata/backlog/medium.json    (100 items)
//	testdata/backlog/large.jsonl    (1000 items)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/wsjfboard/pkg/loader"
	"github.com/vanderheijden86/wsjfboard/pkg/testutil"
)

type datasetSpec struct {
	name       string
	size       int
	incomplete float64
}

var datasets = []datasetSpec{
	{"small.jsonl", 12, 0.25},
	{"medium.json", 100, 0.1},
	{"large.jsonl", 1000, 0.05},
}

func main() {
	outputDir := filepath.Join("testdata", "backlog")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		gen := testutil.New(testutil.GeneratorConfig{
			Seed:            int64(ds.size),
			IDPrefix:        "WSJF",
			IncompleteRatio: ds.incomplete,
		})
		items := gen.Items(ds.size)
		path := filepath.Join(outputDir, ds.name)
		if err := loader.SaveItemsToFile(path, items); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		estimated := 0
		for _, it := range items {
			if it.Estimated() {
				estimated++
			}
		}
		fmt.Printf("Wrote %s: %d items, %d fully estimated\n", path, len(items), estimated)
	}
}
