// Package render turns a coverage mapping into an annotated source listing.
package render

import (
	"strconv"

	"github.com/zjy-dev/covlens/internal/coverage"
)

// minGutterWidth is the narrowest count column, wide enough for "9999".
const minGutterWidth = 4

// State is the display state for one file. The caller owns it: Load when
// coverage is shown, Replace on reload, Dispose when coverage is hidden.
// A State is not safe for concurrent use.
type State struct {
	mapping *coverage.FileMapping
	regions []coverage.Region
}

// NewState returns an inactive State.
func NewState() *State {
	return &State{}
}

// Load activates the state with m. Loading over an active state replaces it.
func (s *State) Load(m *coverage.FileMapping) {
	s.mapping = m
	s.regions = m.UncoveredRegions()
}

// Replace swaps in m and reports whether a previous mapping was active.
func (s *State) Replace(m *coverage.FileMapping) bool {
	replaced := s.Active()
	s.Load(m)
	return replaced
}

// Dispose drops the mapping; the state renders as plain source afterwards.
func (s *State) Dispose() {
	s.mapping = nil
	s.regions = nil
}

// Active reports whether a mapping is loaded.
func (s *State) Active() bool {
	return s.mapping != nil
}

// Mapping returns the loaded mapping, or nil.
func (s *State) Mapping() *coverage.FileMapping {
	return s.mapping
}

// Regions returns the uncovered regions of the loaded mapping.
func (s *State) Regions() []coverage.Region {
	return s.regions
}

// LineCount returns the count for a 1-based line; ok is false for no data.
func (s *State) LineCount(line int) (uint64, bool) {
	if s.mapping == nil {
		return 0, false
	}
	return s.mapping.LineCount(line)
}

// DisplayValue is the gutter text for a line: its count, or "" when there is no data.
func (s *State) DisplayValue(line int) string {
	count, ok := s.LineCount(line)
	if !ok {
		return ""
	}
	return strconv.FormatUint(count, 10)
}

// GutterWidth is the width of the count column: the digits of the max count, at least 4.
func (s *State) GutterWidth() int {
	if s.mapping == nil {
		return minGutterWidth
	}
	return max(minGutterWidth, len(strconv.FormatUint(s.mapping.MaxCount(), 10)))
}
