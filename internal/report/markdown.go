package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MarkdownReporter implements the Reporter interface by saving reports as markdown files.
type MarkdownReporter struct {
	outputDir string
	now       func() time.Time
}

// NewMarkdownReporter creates a new MarkdownReporter.
func NewMarkdownReporter(outputDir string) *MarkdownReporter {
	return &MarkdownReporter{
		outputDir: outputDir,
		now:       time.Now,
	}
}

// Save writes the report to a timestamped markdown file in the output directory.
func (r *MarkdownReporter) Save(rep *Report) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	reportName := fmt.Sprintf("coverage_%d.md", r.now().UnixNano())
	reportPath := filepath.Join(r.outputDir, reportName)

	if err := os.WriteFile(reportPath, []byte(Markdown(rep)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return reportPath, nil
}

// Markdown renders the report as a markdown document.
func Markdown(rep *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Coverage Report: %s\n\n", rep.Source)

	t := rep.Totals()
	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- **Files:** %d\n", len(rep.Files))
	fmt.Fprintf(&b, "- **Lines:** %d/%d (%.1f%%)\n", t.CountedLines-t.ZeroLines, t.CountedLines, t.Percentage())
	fmt.Fprintf(&b, "- **Uncovered regions:** %d\n\n", t.UncoveredRegions)

	b.WriteString("## Files\n\n")
	b.WriteString("| File | Lines | Coverage | Max count | Uncovered regions |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range rep.Files {
		st := f.Stats
		fmt.Fprintf(&b, "| `%s` | %d/%d | %.1f%% | %d | %d |\n",
			f.Filename, st.CountedLines-st.ZeroLines, st.CountedLines, st.Percentage(), st.MaxCount, st.UncoveredRegions)
	}
	b.WriteString("\n")

	// Only files with something left to cover get a section
	for _, f := range rep.Files {
		if len(f.Regions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", f.Filename)
		for _, region := range f.Regions {
			fmt.Fprintf(&b, "- `%s`\n", region)
		}
		b.WriteString("\n")
	}

	return b.String()
}
