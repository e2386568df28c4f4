// Package report writes per-export coverage reports.
package report

import (
	"fmt"

	"github.com/zjy-dev/covlens/internal/coverage"
	"github.com/zjy-dev/covlens/internal/export"
)

// Reporter defines the interface for saving coverage reports.
type Reporter interface {
	// Save writes the report and returns where it was written.
	Save(r *Report) (string, error)
}

// FileReport is the coverage of one file of the export.
type FileReport struct {
	Filename string
	Stats    coverage.Stats
	Regions  []coverage.Region
	// Summary is the export's own line summary, nil when absent.
	Summary *export.LineSummary
}

// Report is the coverage of every file of an export.
type Report struct {
	// Source names the export the report was built from.
	Source string
	Files  []FileReport
}

// Totals sums the line statistics of all files.
func (r *Report) Totals() coverage.Stats {
	var t coverage.Stats
	for _, f := range r.Files {
		t.CountedLines += f.Stats.CountedLines
		t.ZeroLines += f.Stats.ZeroLines
		t.UncoveredRegions += f.Stats.UncoveredRegions
		t.MaxCount = max(t.MaxCount, f.Stats.MaxCount)
	}
	return t
}

// Build maps every file of e. Repeated filenames are reported once, using
// the first record like Export.File does. Any malformed file fails the build.
func Build(source string, e *export.Export) (*Report, error) {
	r := &Report{Source: source}
	seen := make(map[string]bool)
	for _, name := range e.Filenames() {
		if seen[name] {
			continue
		}
		seen[name] = true

		f, err := e.File(name)
		if err != nil {
			return nil, err
		}
		m, err := f.Mapping()
		if err != nil {
			return nil, fmt.Errorf("failed to map %s: %w", name, err)
		}
		r.Files = append(r.Files, FileReport{
			Filename: name,
			Stats:    m.Stats(),
			Regions:  m.UncoveredRegions(),
			Summary:  f.Summary,
		})
	}
	return r, nil
}
