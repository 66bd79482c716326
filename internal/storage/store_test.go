package storage

import (
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOptionsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.LoadOptions(); !errors.Is(err, ErrNotFound) {
		t.Errorf("fresh store LoadOptions err = %v, want ErrNotFound", err)
	}

	if err := s.SaveOptions(Options{HashMB: 256}); err != nil {
		t.Fatalf("SaveOptions: %v", err)
	}

	opts, err := s.LoadOptions()
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.HashMB != 256 {
		t.Errorf("HashMB = %d, want 256", opts.HashMB)
	}
}

func TestStatsAccumulate(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats on fresh store: %v", err)
	}
	if stats.Searches != 0 || stats.TotalNodes != 0 {
		t.Errorf("fresh stats not zero: %+v", stats)
	}

	if err := s.RecordSearch(1000); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordSearch(500); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordPerft(); err != nil {
		t.Fatal(err)
	}

	stats, err = s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Searches != 2 {
		t.Errorf("Searches = %d, want 2", stats.Searches)
	}
	if stats.TotalNodes != 1500 {
		t.Errorf("TotalNodes = %d, want 1500", stats.TotalNodes)
	}
	if stats.PerftRuns != 1 {
		t.Errorf("PerftRuns = %d, want 1", stats.PerftRuns)
	}
	if stats.LastUsed.IsZero() {
		t.Error("LastUsed not stamped")
	}
}

func TestDefaultOptions(t *testing.T) {
	if DefaultOptions().HashMB != 64 {
		t.Errorf("default hash = %d, want 64", DefaultOptions().HashMB)
	}
}
