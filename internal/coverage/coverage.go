// Package coverage maps llvm-cov segment data onto source lines.
//
// A FileMapping is built once from the segments of a single file and is
// read-only afterwards. It resolves one execution count per line and the
// list of uncovered regions used for highlighting.
package coverage

import "fmt"

// Position is a 1-based line/column location in a source file.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// String returns the position as "line:col".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Less reports whether p sorts before o.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Col < o.Col
}

// Region is an uncovered source range. End is exclusive.
type Region struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// String returns the region as "l:c-l:c".
func (r Region) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Stats summarises a mapping for display.
type Stats struct {
	// Lines with a resolved count
	CountedLines int
	// Counted lines whose resolved count is zero
	ZeroLines int
	// Number of uncovered regions
	UncoveredRegions int
	MaxCount         uint64
}

// Percentage returns the share of counted lines that executed at least once (0-100).
func (s Stats) Percentage() float64 {
	if s.CountedLines == 0 {
		return 0
	}
	return float64(s.CountedLines-s.ZeroLines) * 100 / float64(s.CountedLines)
}
