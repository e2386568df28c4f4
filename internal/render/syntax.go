package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// tokenClass is the highlight category of a piece of source text.
type tokenClass int

const (
	classPlain tokenClass = iota
	classKeyword
	classComment
	classString
	classNumber
	classOperator
	classBuiltin
	classFunction
	className
)

// run is a piece of one source line with a single highlight class.
type run struct {
	text  string
	class tokenClass
}

// splitLines splits source into lines without their terminators. A trailing
// newline does not produce an extra empty line.
func splitLines(source string) []string {
	source = strings.TrimSuffix(source, "\n")
	if source == "" {
		return nil
	}
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// plainRuns returns one unhighlighted run per line.
func plainRuns(lines []string) [][]run {
	runs := make([][]run, len(lines))
	for i, line := range lines {
		if line != "" {
			runs[i] = []run{{text: line}}
		}
	}
	return runs
}

// tokenizeLines highlights source with the lexer chosen for filename and
// returns the runs of each line. It returns nil when no lexer applies.
func tokenizeLines(filename, source string, lines []string) [][]run {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	runs := make([][]run, len(lines))
	line := 0
	for token := iterator(); token != chroma.EOF; token = iterator() {
		class := classify(token.Type)
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				line++
			}
			part = strings.TrimSuffix(part, "\r")
			if part == "" || line >= len(lines) {
				continue
			}
			runs[line] = append(runs[line], run{text: part, class: class})
		}
	}

	// Lexers may normalise input; fall back to plain text for any line that no
	// longer matches the source byte for byte, since region columns are byte offsets.
	for i := range lines {
		var b strings.Builder
		for _, r := range runs[i] {
			b.WriteString(r.text)
		}
		if b.String() != lines[i] {
			runs[i] = nil
			if lines[i] != "" {
				runs[i] = []run{{text: lines[i]}}
			}
		}
	}
	return runs
}

// classify maps a chroma token type onto a highlight class.
func classify(tt chroma.TokenType) tokenClass {
	switch {
	case tt == chroma.NameBuiltin || tt == chroma.NameBuiltinPseudo:
		return classBuiltin
	case tt == chroma.NameFunction || tt == chroma.NameFunctionMagic:
		return classFunction
	case tt.InCategory(chroma.Keyword):
		return classKeyword
	case tt.InCategory(chroma.Comment):
		return classComment
	case tt.InSubCategory(chroma.LiteralString):
		return classString
	case tt.InSubCategory(chroma.LiteralNumber):
		return classNumber
	case tt.InCategory(chroma.Operator):
		return classOperator
	case tt.InCategory(chroma.Name):
		return className
	default:
		return classPlain
	}
}
