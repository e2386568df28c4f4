package coverage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cast"
)

// segmentArity is the number of fields in an exported segment tuple:
// line, col, count, hasCount, isRegionEntry.
const segmentArity = 5

// ErrMalformedInput is matched by every MalformedInputError.
var ErrMalformedInput = errors.New("malformed segment data")

// MalformedInputError reports a segment tuple that cannot be turned into a Segment.
type MalformedInputError struct {
	// Index of the offending tuple, -1 when not known.
	Index  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed segment: %s", e.Reason)
	}
	return fmt.Sprintf("malformed segment %d: %s", e.Index, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedInput) succeed.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// Segment is a single coverage data point anchored at a source position.
type Segment struct {
	Line  int
	Col   int
	Count uint64
	// HasCount is false when Count is carried over rather than measured.
	HasCount bool
	// IsRegionEntry marks the start of a countable region, as opposed to a region exit.
	IsRegionEntry bool
}

// Pos returns the segment's source position.
func (s Segment) Pos() Position {
	return Position{Line: s.Line, Col: s.Col}
}

// NewSegment builds a Segment from an exported tuple of the form
// [line, col, count, hasCount, isRegionEntry].
func NewSegment(fields []any) (Segment, error) {
	if len(fields) != segmentArity {
		return Segment{}, &MalformedInputError{
			Index:  -1,
			Reason: fmt.Sprintf("expected %d fields, got %d", segmentArity, len(fields)),
		}
	}

	line, err := toInt(fields[0])
	if err != nil {
		return Segment{}, fieldError("line", err)
	}
	col, err := toInt(fields[1])
	if err != nil {
		return Segment{}, fieldError("col", err)
	}
	count, err := toCount(fields[2])
	if err != nil {
		return Segment{}, fieldError("count", err)
	}
	hasCount, err := toBool(fields[3])
	if err != nil {
		return Segment{}, fieldError("hasCount", err)
	}
	isEntry, err := toBool(fields[4])
	if err != nil {
		return Segment{}, fieldError("isRegionEntry", err)
	}

	return Segment{
		Line:          line,
		Col:           col,
		Count:         count,
		HasCount:      hasCount,
		IsRegionEntry: isEntry,
	}, nil
}

func fieldError(name string, err error) error {
	return &MalformedInputError{Index: -1, Reason: fmt.Sprintf("field %s: %v", name, err)}
}

// toInt coerces a line or column value. Booleans and nil are rejected
// even though cast would accept them.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, errors.New("missing value")
	case bool:
		return 0, fmt.Errorf("unable to cast %v of type bool to int", n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", n.String())
		}
		return int(i), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("non-integral value %v", n)
		}
	}
	return cast.ToIntE(v)
}

// toCount coerces an execution count. Counts can exceed the range of int64
// and must be read from the raw JSON number to stay exact.
func toCount(v any) (uint64, error) {
	switch n := v.(type) {
	case nil:
		return 0, errors.New("missing value")
	case bool:
		return 0, fmt.Errorf("unable to cast %v of type bool to uint64", n)
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid count %q", n.String())
		}
		return u, nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("non-integral value %v", n)
		}
	}
	return cast.ToUint64E(v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, errors.New("missing value")
	case json.Number:
		i, err := b.Int64()
		if err != nil {
			return false, fmt.Errorf("invalid flag %q", b.String())
		}
		return i != 0, nil
	}
	return cast.ToBoolE(v)
}
