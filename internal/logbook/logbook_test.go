package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "almonry.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestScopedEntriesCarryTheRunID(t *testing.T) {
	var out strings.Builder
	book := NewWriter(&out)
	book.Scoped("run-42").Warn("ledger unavailable")
	line := out.String()
	if !strings.Contains(line, "run-42") {
		t.Fatalf("expected scope in entry, got %q", line)
	}
	if !strings.Contains(line, "WARN") {
		t.Fatalf("expected level in entry, got %q", line)
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Scoped("run").Error("ignored")
	if lines := book.Tail(10); lines != nil {
		t.Fatalf("expected nil tail, got %v", lines)
	}
}
