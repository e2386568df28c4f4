package render

import "github.com/zjy-dev/covlens/internal/coverage"

// Span is a half-open range of 0-based byte offsets within one line.
type Span struct {
	Start int
	End   int
}

// SpansForLine clips regions to a 1-based line of lineLen bytes. A region
// ending at column 1 of a line does not touch that line. Overlapping
// regions yield overlapping spans.
func SpansForLine(regions []coverage.Region, line, lineLen int) []Span {
	var spans []Span
	for _, r := range regions {
		if line < r.Start.Line || line > r.End.Line {
			continue
		}
		start, end := 0, lineLen
		if line == r.Start.Line {
			start = r.Start.Col - 1
		}
		if line == r.End.Line {
			end = r.End.Col - 1
		}
		start = min(max(start, 0), lineLen)
		end = min(max(end, 0), lineLen)
		if end > start {
			spans = append(spans, Span{Start: start, End: end})
		}
	}
	return spans
}

// spanMask marks every byte of a line covered by at least one span.
func spanMask(spans []Span, lineLen int) []bool {
	if len(spans) == 0 {
		return nil
	}
	mask := make([]bool, lineLen)
	for _, sp := range spans {
		for i := sp.Start; i < sp.End; i++ {
			mask[i] = true
		}
	}
	return mask
}
