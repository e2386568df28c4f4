package coverage

import (
	"cmp"
	"errors"
	"iter"
	"slices"
)

// FileMapping holds the line-level view of one file's coverage segments.
// It is immutable after construction and safe for concurrent reads.
type FileMapping struct {
	name string

	// segments is sorted by (Line, Col)
	segments []Segment

	// segmentsForLine maps each line to the segments active on it
	segmentsForLine map[int][]Segment

	// lineCounts maps each line to its dominant count
	lineCounts map[int]uint64

	// lines holds the keys of lineCounts in ascending order
	lines []int

	maxCount  uint64
	uncovered []Region
}

// BuildMapping converts raw segment tuples and builds the mapping for the named file.
// No mapping is returned if any tuple is malformed.
func BuildMapping(name string, tuples [][]any) (*FileMapping, error) {
	segments := make([]Segment, 0, len(tuples))
	for i, tuple := range tuples {
		seg, err := NewSegment(tuple)
		if err != nil {
			var me *MalformedInputError
			if errors.As(err, &me) {
				me.Index = i
			}
			return nil, err
		}
		segments = append(segments, seg)
	}
	return NewFileMapping(name, segments), nil
}

// NewFileMapping builds the mapping from already decoded segments.
// The input slice is copied and never modified.
func NewFileMapping(name string, segments []Segment) *FileMapping {
	m := &FileMapping{
		name:            name,
		segments:        slices.Clone(segments),
		segmentsForLine: make(map[int][]Segment),
		lineCounts:      make(map[int]uint64),
	}
	slices.SortStableFunc(m.segments, func(a, b Segment) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Col, b.Col))
	})

	m.activateLines()
	m.resolveCounts()
	m.extractUncovered()

	return m
}

// activateLines registers each segment on every line it spans before the next segment.
// The last segment has no successor and spans nothing.
func (m *FileMapping) activateLines() {
	for i := 1; i < len(m.segments); i++ {
		prev, cur := m.segments[i-1], m.segments[i]
		end := cur.Line
		if cur.Col > 1 {
			// cur starts mid-line, so prev still covers the head of cur's line
			end = cur.Line + 1
		}
		for line := prev.Line; line < end; line++ {
			m.segmentsForLine[line] = append(m.segmentsForLine[line], prev)
		}
	}
}

// resolveCounts picks the dominant count for every active line.
func (m *FileMapping) resolveCounts() {
	m.lines = make([]int, 0, len(m.segmentsForLine))
	for line, active := range m.segmentsForLine {
		top := active[0]
		for _, seg := range active[1:] {
			if outranks(seg, top) {
				top = seg
			}
		}
		m.lineCounts[line] = top.Count
		m.maxCount = max(m.maxCount, top.Count)
		m.lines = append(m.lines, line)
	}
	slices.Sort(m.lines)
}

// outranks reports whether a sorts strictly above b: region entries first,
// then higher counts.
func outranks(a, b Segment) bool {
	if a.IsRegionEntry != b.IsRegionEntry {
		return a.IsRegionEntry
	}
	return a.Count > b.Count
}

// extractUncovered emits one region per consecutive segment pair whose first
// segment is a zero-count region entry. Adjacent regions are not merged.
func (m *FileMapping) extractUncovered() {
	for i := 1; i < len(m.segments); i++ {
		a, b := m.segments[i-1], m.segments[i]
		if a.Count == 0 && a.IsRegionEntry {
			m.uncovered = append(m.uncovered, Region{Start: a.Pos(), End: b.Pos()})
		}
	}
}

// Name returns the file identifier the mapping was built for.
func (m *FileMapping) Name() string {
	return m.name
}

// Segments returns a copy of the sorted segments.
func (m *FileMapping) Segments() []Segment {
	return slices.Clone(m.segments)
}

// SegmentsForLine returns a copy of the segments active on line, in activation order.
func (m *FileMapping) SegmentsForLine(line int) []Segment {
	return slices.Clone(m.segmentsForLine[line])
}

// CountedLines yields (line, count) for every line with a resolved count,
// in ascending line order. The sequence can be ranged over any number of times.
func (m *FileMapping) CountedLines() iter.Seq2[int, uint64] {
	return func(yield func(int, uint64) bool) {
		for _, line := range m.lines {
			if !yield(line, m.lineCounts[line]) {
				return
			}
		}
	}
}

// LineCount returns the resolved count for line. ok is false when the line
// has no active segments, which is distinct from a zero count.
func (m *FileMapping) LineCount(line int) (count uint64, ok bool) {
	count, ok = m.lineCounts[line]
	return count, ok
}

// Lines returns the number of lines with a resolved count.
func (m *FileMapping) Lines() int {
	return len(m.lines)
}

// MaxCount returns the largest resolved line count, or 0 for an empty mapping.
func (m *FileMapping) MaxCount() uint64 {
	return m.maxCount
}

// UncoveredRegions returns a copy of the uncovered regions in ascending order.
func (m *FileMapping) UncoveredRegions() []Region {
	return slices.Clone(m.uncovered)
}

// Stats computes display statistics for the mapping.
func (m *FileMapping) Stats() Stats {
	st := Stats{
		CountedLines:     len(m.lines),
		UncoveredRegions: len(m.uncovered),
		MaxCount:         m.maxCount,
	}
	for _, count := range m.lineCounts {
		if count == 0 {
			st.ZeroLines++
		}
	}
	return st
}
