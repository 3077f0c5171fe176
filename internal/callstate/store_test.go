package callstate

import (
	"testing"
	"time"

	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func TestGetOrCreate_SingleEntryPerCall(t *testing.T) {
	s := New(newTestLogger(t))
	cfg := domain.CallConfig{CallPurpose: "sales"}

	first := s.GetOrCreate("call-1", cfg)
	second := s.GetOrCreate("call-1", domain.CallConfig{CallPurpose: "support"})

	if first.CallID != "call-1" || second.CallID != "call-1" {
		t.Fatalf("expected same call id, got %q and %q", first.CallID, second.CallID)
	}
	if second.Config.CallPurpose != "sales" {
		t.Fatalf("expected GetOrCreate to not overwrite existing state, got purpose %q", second.Config.CallPurpose)
	}
	if s.Len() != 1 {
		t.Fatalf("expected exactly one stored entry, got %d", s.Len())
	}
}

func TestUpdate_MutatesAndPersists(t *testing.T) {
	s := New(newTestLogger(t))
	s.GetOrCreate("call-2", domain.CallConfig{})

	s.Update("call-2", func(st *domain.CallState) {
		st.LastPressedDigit = "5"
	})

	got := s.GetOrCreate("call-2", domain.CallConfig{})
	if got.LastPressedDigit != "5" {
		t.Fatalf("expected mutation to persist, got %q", got.LastPressedDigit)
	}
}

func TestUpdate_SeedsMissingState(t *testing.T) {
	s := New(newTestLogger(t))
	got := s.Update("call-3", func(st *domain.CallState) {
		st.LastSpeech = "hello"
	})
	if got.CallID != "call-3" || got.LastSpeech != "hello" {
		t.Fatalf("expected best-effort seeded state, got %+v", got)
	}
}

func TestClear_RemovesEntry(t *testing.T) {
	s := New(newTestLogger(t))
	s.GetOrCreate("call-4", domain.CallConfig{})
	s.Clear("call-4")
	if s.Len() != 0 {
		t.Fatalf("expected store empty after clear, got %d entries", s.Len())
	}
}

func TestSweep_EvictsOnlyStaleEntries(t *testing.T) {
	s := New(newTestLogger(t))
	s.ttl = 10 * time.Millisecond

	s.GetOrCreate("old-call", domain.CallConfig{})
	time.Sleep(20 * time.Millisecond)
	s.GetOrCreate("fresh-call", domain.CallConfig{})

	s.sweep()

	if s.Len() != 1 {
		t.Fatalf("expected exactly one surviving entry, got %d", s.Len())
	}
	got := s.GetOrCreate("fresh-call", domain.CallConfig{})
	if got.CallID != "fresh-call" {
		t.Fatalf("expected fresh-call to survive sweep, got %+v", got)
	}
}
