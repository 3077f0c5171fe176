package historysink

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ivrline/callnav/internal/platform/logger"
)

// Store is the Call-History Sink's operation set. Every
// method is fire-and-forget: it enqueues work and returns immediately.
type Store interface {
	StartCall(callID, to, from, purpose string)
	AddConversation(callID, role, text string, at time.Time)
	AddDigit(callID, digit string, matchedMenu any)
	AddMenu(callID string, options any, complete bool)
	AddTransfer(callID, destination string)
	UpdateTransferSuccess(callID string, succeeded bool)
	AddTermination(callID, reason, message string)
	EndCall(callID, status string)
}

// task is one queued write, run against the database by a drain worker.
type task func(ctx context.Context, db *gorm.DB) error

// GormStore implements Store with a buffered channel of tasks drained by
// a small worker pool of N goroutines, except here the queue is
// in-process and best-effort rather than durable, matching the
// fire-and-forget requirement on call-history writes.
type GormStore struct {
	log    *logger.Logger
	db     *gorm.DB
	tasks  chan task
	mirror Mirror
}

// Mirror optionally republishes history events elsewhere (e.g. Redis
// pub/sub) for live observers. A nil Mirror is a no-op.
type Mirror interface {
	Publish(ctx context.Context, callID string, kind CallEventKind, data any)
}

const defaultQueueDepth = 256
const defaultDrainWorkers = 4

// NewGormStore starts the drain workers and returns a ready Store. ctx
// governs the workers' lifetime; cancel it to stop draining.
func NewGormStore(ctx context.Context, db *gorm.DB, log *logger.Logger, mirror Mirror) *GormStore {
	s := &GormStore{
		log:    log.With("component", "CallHistorySink"),
		db:     db,
		tasks:  make(chan task, defaultQueueDepth),
		mirror: mirror,
	}
	for i := 0; i < defaultDrainWorkers; i++ {
		go s.drain(ctx)
	}
	return s
}

func (s *GormStore) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-s.tasks:
			if !ok {
				return
			}
			if err := t(ctx, s.db); err != nil {
				s.log.Warn("call-history write failed (continuing)", "error", err)
			}
		}
	}
}

// enqueue is best-effort: a full queue drops the write rather than
// blocking the orchestrator's turn.
func (s *GormStore) enqueue(t task) {
	select {
	case s.tasks <- t:
	default:
		s.log.Warn("call-history queue full, dropping write")
	}
}

func (s *GormStore) StartCall(callID, to, from, purpose string) {
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		rec := &CallRecord{
			CallID:    callID,
			To:        to,
			From:      from,
			Purpose:   purpose,
			Status:    "in_progress",
			StartedAt: time.Now().UTC(),
		}
		// Duplicate start-call for the same id upserts.
		return db.WithContext(ctx).
			Clauses(onConflictUpdateStatus()).
			Create(rec).Error
	})
}

func (s *GormStore) AddConversation(callID, role, text string, at time.Time) {
	s.publish(callID, EventConversation, map[string]any{"role": role, "text": text, "at": at})
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		return db.WithContext(ctx).Create(&CallEvent{
			CallID: callID,
			Kind:   EventConversation,
			Data:   mustJSON(map[string]any{"role": role, "text": text, "at": at}),
		}).Error
	})
}

func (s *GormStore) AddDigit(callID, digit string, matchedMenu any) {
	s.publish(callID, EventDTMF, map[string]any{"digit": digit, "matched_menu": matchedMenu})
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		return db.WithContext(ctx).Create(&CallEvent{
			CallID: callID,
			Kind:   EventDTMF,
			Data:   mustJSON(map[string]any{"digit": digit, "matched_menu": matchedMenu}),
		}).Error
	})
}

func (s *GormStore) AddMenu(callID string, options any, complete bool) {
	s.publish(callID, EventMenu, map[string]any{"options": options, "complete": complete})
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		return db.WithContext(ctx).Create(&CallEvent{
			CallID: callID,
			Kind:   EventMenu,
			Data:   mustJSON(map[string]any{"options": options, "complete": complete}),
		}).Error
	})
}

func (s *GormStore) AddTransfer(callID, destination string) {
	s.publish(callID, EventTransfer, map[string]any{"destination": destination})
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		if err := db.WithContext(ctx).Create(&CallEvent{
			CallID: callID,
			Kind:   EventTransfer,
			Data:   mustJSON(map[string]any{"destination": destination, "succeeded": nil}),
		}).Error; err != nil {
			return err
		}
		return db.WithContext(ctx).Model(&CallRecord{}).
			Where("call_id = ?", callID).
			Update("transfer_status", "dialed").Error
	})
}

func (s *GormStore) UpdateTransferSuccess(callID string, succeeded bool) {
	s.publish(callID, EventTransfer, map[string]any{"succeeded": succeeded})
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		status := "failed"
		if succeeded {
			status = "succeeded"
		}
		return db.WithContext(ctx).Model(&CallRecord{}).
			Where("call_id = ?", callID).
			Update("transfer_status", status).Error
	})
}

func (s *GormStore) AddTermination(callID, reason, message string) {
	s.publish(callID, EventTermination, map[string]any{"reason": reason, "message": message})
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		if err := db.WithContext(ctx).Create(&CallEvent{
			CallID: callID,
			Kind:   EventTermination,
			Data:   mustJSON(map[string]any{"reason": reason, "message": message}),
		}).Error; err != nil {
			return err
		}
		return db.WithContext(ctx).Model(&CallRecord{}).
			Where("call_id = ?", callID).
			Update("termination_reason", reason).Error
	})
}

func (s *GormStore) EndCall(callID, status string) {
	s.enqueue(func(ctx context.Context, db *gorm.DB) error {
		now := time.Now().UTC()
		return db.WithContext(ctx).Model(&CallRecord{}).
			Where("call_id = ?", callID).
			Updates(map[string]any{"status": status, "ended_at": &now}).Error
	})
}

func (s *GormStore) publish(callID string, kind CallEventKind, data any) {
	if s.mirror == nil {
		return
	}
	s.mirror.Publish(context.Background(), callID, kind, data)
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(raw)
}
