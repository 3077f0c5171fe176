package historysink

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

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

// recordingMirror captures published events for assertions without
// needing a live Redis connection.
type recordingMirror struct {
	mu     sync.Mutex
	events []mirroredEvent
}

func (m *recordingMirror) Publish(_ context.Context, callID string, kind CallEventKind, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, mirroredEvent{CallID: callID, Kind: kind, Data: data})
}

func (m *recordingMirror) snapshot() []mirroredEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mirroredEvent, len(m.events))
	copy(out, m.events)
	return out
}

func TestGormStore_EnqueueDropsWhenQueueFull(t *testing.T) {
	s := &GormStore{
		log:   newTestLogger(t),
		tasks: make(chan task, 1),
	}
	// Fill the queue with a task that never runs (no drain worker started).
	s.enqueue(func(ctx context.Context, db *gorm.DB) error { return nil })

	calls := 0
	s.enqueue(func(_ context.Context, _ *gorm.DB) error {
		calls++
		return nil
	})
	_ = calls

	if len(s.tasks) != 1 {
		t.Fatalf("expected queue to stay at capacity 1 after a drop, got %d", len(s.tasks))
	}
}

func TestAddConversation_PublishesToMirror(t *testing.T) {
	mirror := &recordingMirror{}
	s := &GormStore{
		log:    newTestLogger(t),
		tasks:  make(chan task, 8),
		mirror: mirror,
	}

	s.AddConversation("call-1", "caller", "hello", time.Now())

	events := mirror.snapshot()
	if len(events) != 1 || events[0].Kind != EventConversation || events[0].CallID != "call-1" {
		t.Fatalf("expected one conversation event for call-1, got %+v", events)
	}
}

func TestAddTermination_PublishesTerminationEvent(t *testing.T) {
	mirror := &recordingMirror{}
	s := &GormStore{
		log:    newTestLogger(t),
		tasks:  make(chan task, 8),
		mirror: mirror,
	}

	s.AddTermination("call-2", "closed", "business is closed")

	events := mirror.snapshot()
	if len(events) != 1 || events[0].Kind != EventTermination {
		t.Fatalf("expected one termination event, got %+v", events)
	}
}
