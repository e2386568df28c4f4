// Package logger provides the leveled, process-wide logger used by covlens.
//
// Messages follow the "[Component] message" convention, e.g.
//
//	logger.Info("[Coverage] Loaded %s", name)
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Level represents the logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levels = [...]struct {
	name  string
	color lipgloss.Color
}{
	DEBUG: {"DEBUG", "6"},
	INFO:  {"INFO", "2"},
	WARN:  {"WARN", "3"},
	ERROR: {"ERROR", "1"},
}

func (l Level) valid() bool {
	return l >= DEBUG && l <= ERROR
}

// String returns the level name.
func (l Level) String() string {
	if l.valid() {
		return levels[l].name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a level name such as "debug" or "warning". An empty
// name is INFO.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", levelStr)
	}
}

// Logger writes timestamped, leveled lines to an output.
type Logger struct {
	mu     sync.Mutex
	level  Level
	out    io.Writer
	color  bool
	styles [len(levels)]lipgloss.Style
	now    func() time.Time
}

// New creates a Logger writing to w at INFO level with colour enabled.
func New(w io.Writer) *Logger {
	l := &Logger{level: INFO, color: true, now: time.Now}
	l.setOutput(w)
	return l
}

var std = New(os.Stderr)

// Default returns the process-wide logger behind the package functions.
func Default() *Logger {
	return std
}

// setOutput rebuilds the level styles for w. Colour is forced to the basic
// ANSI palette so it does not depend on terminal detection; SetColorEnable
// turns it off.
func (l *Logger) setOutput(w io.Writer) {
	l.out = w
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI)
	for lvl, info := range levels {
		l.styles[lvl] = r.NewStyle().Foreground(info.color)
	}
}

// SetLevel sets the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum level that is written.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput sets the output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setOutput(w)
}

// SetColorEnable enables or disables coloured level tags.
func (l *Logger) SetColorEnable(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = enable
}

// Logf writes one line at level.
func (l *Logger) Logf(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || !level.valid() {
		return
	}

	tag := "[" + level.String() + "]"
	if l.color {
		tag = l.styles[level].Render(tag)
	}
	fmt.Fprintf(l.out, "%s %s %s\n", l.now().Format("2006/01/02 15:04:05"), tag, fmt.Sprintf(format, args...))
}

// SetLevel sets the level of the default logger. Unknown names fall back to INFO.
func SetLevel(levelStr string) {
	level, _ := ParseLevel(levelStr)
	std.SetLevel(level)
}

// GetLevel returns the level of the default logger.
func GetLevel() Level {
	return std.Level()
}

// SetOutput sets the output destination of the default logger.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetColorEnable enables or disables colour in the default logger.
func SetColorEnable(enable bool) {
	std.SetColorEnable(enable)
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	std.Logf(DEBUG, format, args...)
}

// Info logs an info message.
func Info(format string, args ...any) {
	std.Logf(INFO, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	std.Logf(WARN, format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	std.Logf(ERROR, format, args...)
}
