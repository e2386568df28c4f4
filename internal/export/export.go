// Package export reads llvm-cov JSON exports and selects per-file segment data.
package export

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/zjy-dev/covlens/internal/coverage"
)

// SupportedVersion is the only export schema version accepted by Parse.
const SupportedVersion = "2.0.0"

var (
	// ErrUnsupportedFormat is returned when the document is not a supported llvm-cov export.
	ErrUnsupportedFormat = errors.New("unsupported coverage export format")

	// ErrFileNotFound is returned when no file record matches the requested filename.
	ErrFileNotFound = errors.New("file not found in coverage export")
)

// LineSummary is the "summary.lines" block of a file record.
type LineSummary struct {
	Count   int     `json:"count"`
	Covered int     `json:"covered"`
	Percent float64 `json:"percent"`
}

// File is one file record of an export.
type File struct {
	Filename string

	// Summary is nil when the record carries no line summary.
	Summary *LineSummary

	segments gjson.Result
}

// Segments returns the raw segment tuples. Numbers are returned as json.Number
// so counts are not rounded through float64.
func (f *File) Segments() ([][]any, error) {
	if !f.segments.Exists() {
		return nil, &coverage.MalformedInputError{Index: -1, Reason: fmt.Sprintf("file %s has no segments", f.Filename)}
	}
	if !f.segments.IsArray() {
		return nil, &coverage.MalformedInputError{Index: -1, Reason: fmt.Sprintf("segments of %s is not an array", f.Filename)}
	}

	var tuples [][]any
	var err error
	f.segments.ForEach(func(_, tuple gjson.Result) bool {
		if !tuple.IsArray() {
			err = &coverage.MalformedInputError{Index: len(tuples), Reason: "segment is not an array"}
			return false
		}
		fields := make([]any, 0, 5)
		tuple.ForEach(func(_, field gjson.Result) bool {
			fields = append(fields, fieldValue(field))
			return true
		})
		tuples = append(tuples, fields)
		return true
	})
	if err != nil {
		return nil, err
	}
	if tuples == nil {
		tuples = [][]any{}
	}
	return tuples, nil
}

// Mapping builds the line mapping for this file.
func (f *File) Mapping() (*coverage.FileMapping, error) {
	tuples, err := f.Segments()
	if err != nil {
		return nil, err
	}
	return coverage.BuildMapping(f.Filename, tuples)
}

func fieldValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return r.Str
	case gjson.Null:
		return nil
	default:
		return r.Value()
	}
}

// Export is a parsed, version-checked coverage export.
type Export struct {
	typ     string
	version string
	files   []*File
}

// Parse validates the export header and indexes the file records of data[0].
func Parse(data []byte) (*Export, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnsupportedFormat)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrUnsupportedFormat)
	}
	typ, version := root.Get("type"), root.Get("version")
	if !typ.Exists() || !version.Exists() {
		return nil, fmt.Errorf("%w: missing type or version key", ErrUnsupportedFormat)
	}
	if version.String() != SupportedVersion {
		return nil, fmt.Errorf("%w: version %q, want %q", ErrUnsupportedFormat, version.String(), SupportedVersion)
	}

	e := &Export{
		typ:     typ.String(),
		version: version.String(),
	}

	files := root.Get("data.0.files")
	if !files.IsArray() {
		return nil, fmt.Errorf("%w: data[0].files is missing", ErrUnsupportedFormat)
	}
	files.ForEach(func(_, rec gjson.Result) bool {
		f := &File{
			Filename: rec.Get("filename").String(),
			segments: rec.Get("segments"),
		}
		if lines := rec.Get("summary.lines"); lines.IsObject() {
			f.Summary = &LineSummary{
				Count:   int(lines.Get("count").Int()),
				Covered: int(lines.Get("covered").Int()),
				Percent: lines.Get("percent").Float(),
			}
		}
		e.files = append(e.files, f)
		return true
	})

	return e, nil
}

// Type returns the export's "type" value, normally "llvm.coverage.json.export".
func (e *Export) Type() string { return e.typ }

// Version returns the export schema version.
func (e *Export) Version() string { return e.version }

// Filenames returns the filename of every file record in export order.
func (e *Export) Filenames() []string {
	names := make([]string, 0, len(e.files))
	for _, f := range e.files {
		names = append(names, f.Filename)
	}
	return names
}

// File returns the first record whose filename equals filename exactly.
func (e *Export) File(filename string) (*File, error) {
	for _, f := range e.files {
		if f.Filename == filename {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filename)
}

// Mapping selects filename and builds its line mapping.
func (e *Export) Mapping(filename string) (*coverage.FileMapping, error) {
	f, err := e.File(filename)
	if err != nil {
		return nil, err
	}
	return f.Mapping()
}
