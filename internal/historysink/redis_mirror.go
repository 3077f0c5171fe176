package historysink

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivrline/callnav/internal/platform/logger"
)

// redisMirror republishes call-history events onto a Redis pub/sub
// channel for any live observer.
type redisMirror struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

type mirroredEvent struct {
	CallID string        `json:"call_id"`
	Kind   CallEventKind `json:"kind"`
	Data   any           `json:"data"`
	At     time.Time     `json:"at"`
}

// NewRedisMirror connects using REDIS_URL. A connection failure here is
// non-fatal for the rest of the system: the sink still writes to
// Postgres without a mirror.
func NewRedisMirror(log *logger.Logger) (Mirror, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if addr == "" {
		return nil, nil
	}
	opts, err := goredis.ParseURL(addr)
	if err != nil {
		return nil, err
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisMirror{
		log:     log.With("component", "CallHistoryMirror"),
		rdb:     rdb,
		channel: "callnav:call-events",
	}, nil
}

func (m *redisMirror) Publish(ctx context.Context, callID string, kind CallEventKind, data any) {
	raw, err := json.Marshal(mirroredEvent{CallID: callID, Kind: kind, Data: data, At: time.Now().UTC()})
	if err != nil {
		m.log.Warn("failed to marshal mirrored call event", "error", err)
		return
	}
	if err := m.rdb.Publish(ctx, m.channel, raw).Err(); err != nil {
		m.log.Warn("failed to publish mirrored call event", "error", err)
	}
}
