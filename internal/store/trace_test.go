package store

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestTraceWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}

	entries := []TraceEntry{
		{Iteration: 1, Cost: 500, Timestamp: time.Now(), Guess: "xq"},
		{Iteration: 2, Cost: 120, Timestamp: time.Now(), Guess: "gp"},
		{Iteration: 3, Cost: 0, Timestamp: time.Now(), Guess: "go"},
	}
	for _, e := range entries {
		if err := tw.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i].Iteration != entries[i].Iteration {
			t.Errorf("entry %d iteration mismatch: %d vs %d", i, got[i].Iteration, entries[i].Iteration)
		}
		if got[i].Cost != entries[i].Cost {
			t.Errorf("entry %d cost mismatch: %f vs %f", i, got[i].Cost, entries[i].Cost)
		}
		if got[i].Guess != entries[i].Guess {
			t.Errorf("entry %d guess mismatch: %q vs %q", i, got[i].Guess, entries[i].Guess)
		}
	}
}

func TestTraceAppendMode(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	if err := tw.Write(TraceEntry{Iteration: 1, Cost: 10, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Append entries from a resumed run.
	tw, err = NewTraceWriter(dir, "job-1", true)
	if err != nil {
		t.Fatalf("NewTraceWriter append failed: %v", err)
	}
	if err := tw.Write(TraceEntry{Iteration: 2, Cost: 5, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries after append, got %d", len(got))
	}
	if got[1].Iteration != 2 {
		t.Errorf("appended entry iteration = %d, want 2", got[1].Iteration)
	}
}

func TestTraceTruncateMode(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(TraceEntry{Iteration: 1, Cost: 10, Timestamp: time.Now()})
	tw.Close()

	// A fresh run truncates.
	tw, err = NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(TraceEntry{Iteration: 1, Cost: 99, Timestamp: time.Now()})
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 1 || got[0].Cost != 99 {
		t.Fatalf("expected single truncated entry with cost 99, got %+v", got)
	}
}

func TestTraceReaderMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := NewTraceReader(dir, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTraceReaderEOF(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(TraceEntry{Iteration: 1, Cost: 1, Timestamp: time.Now()})
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	if _, err := tr.Read(); err != nil {
		t.Fatalf("first Read failed: %v", err)
	}
	if _, err := tr.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestDeleteTrace(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(TraceEntry{Iteration: 1, Cost: 1, Timestamp: time.Now()})
	tw.Close()

	if err := DeleteTrace(dir, "job-1"); err != nil {
		t.Fatalf("DeleteTrace failed: %v", err)
	}
	if _, err := NewTraceReader(dir, "job-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing trace is not an error.
	if err := DeleteTrace(dir, "missing"); err != nil {
		t.Fatalf("DeleteTrace on missing file failed: %v", err)
	}
}
