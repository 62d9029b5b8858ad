package logbook

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook persists negotiation progress to a simple text file so a run can be
// inspected after the fact. A scoped logbook prefixes every entry with the
// run it belongs to. Logging never fails the caller.
type Logbook struct {
	path  string
	scope string
	mu    *sync.Mutex
	out   io.Writer
}

// New creates a logbook that appends to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: ensure log dir: %w", err)
	}
	return &Logbook{path: path, mu: &sync.Mutex{}}, nil
}

// NewWriter creates a logbook that appends to an arbitrary writer. Used by
// the CLI for stderr logging and by tests.
func NewWriter(out io.Writer) *Logbook {
	return &Logbook{out: out, mu: &sync.Mutex{}}
}

// Scoped returns a logbook that tags entries with the given scope, typically
// a run id. The underlying file and lock are shared.
func (l *Logbook) Scoped(scope string) *Logbook {
	if l == nil {
		return nil
	}
	clone := *l
	clone.scope = scope
	return &clone
}

// Path returns the file backing this logbook, if any.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	scope := l.scope
	if scope == "" {
		scope = "-"
	}
	line := fmt.Sprintf("%s %-5s %s %s\n",
		time.Now().UTC().Format(time.RFC3339),
		string(level),
		scope,
		strings.TrimSpace(message),
	)
	if l.out != nil {
		_, _ = io.WriteString(l.out, line)
		return
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Tail returns up to maxLines of the most recent entries.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || l.path == "" || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
