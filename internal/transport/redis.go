package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/assessor/internal/knowledge"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/session"
)

// Event kinds published on the channel.
const (
	KindInstructions = "instructions"
	KindProgress     = "progress"
	KindSummary      = "summary"
)

// Event is the envelope published for every session payload.
type Event struct {
	Kind      string          `json:"kind"`
	UserID    string          `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	At        time.Time       `json:"at"`
	Data      json.RawMessage `json:"data"`
}

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Redis publishes session payloads as JSON on a pub/sub channel so other
// processes can follow a session live.
type Redis struct {
	pub     publisher
	rdb     *goredis.Client
	channel string
	userID  string
	log     *logger.Logger
	now     func() time.Time
}

var _ session.Transport = (*Redis)(nil)

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedis publishes on channel for the given learner.
func NewRedis(rdb *goredis.Client, channel, userID string, log *logger.Logger) *Redis {
	r := newRedis(rdb, channel, userID, log)
	r.rdb = rdb
	return r
}

func newRedis(pub publisher, channel, userID string, log *logger.Logger) *Redis {
	return &Redis{
		pub:     pub,
		channel: channel,
		userID:  userID,
		log:     logger.OrNop(log).With("service", "RedisTransport"),
		now:     time.Now,
	}
}

func (r *Redis) Present(ctx context.Context, in session.Instructions) error {
	return r.publish(ctx, KindInstructions, "", in)
}

func (r *Redis) Progress(ctx context.Context, ev session.ProgressEvent) error {
	return r.publish(ctx, KindProgress, ev.SessionID, ev)
}

func (r *Redis) Complete(ctx context.Context, s knowledge.SessionSummary) error {
	return r.publish(ctx, KindSummary, s.SessionID, s)
}

// Close closes the underlying client when NewRedis created it.
func (r *Redis) Close() error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func (r *Redis) publish(ctx context.Context, kind, sessionID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	raw, err := json.Marshal(Event{
		Kind:      kind,
		UserID:    r.userID,
		SessionID: sessionID,
		At:        r.now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.pub.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	r.log.Debug("published", "kind", kind, "channel", r.channel)
	return nil
}

// Follow subscribes to channel and calls onEvent for every well-formed event
// until ctx is done. Malformed payloads are logged and skipped.
func Follow(ctx context.Context, rdb *goredis.Client, channel string, log *logger.Logger, onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	log = logger.OrNop(log)

	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	// Ensures the subscription actually started.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok || m == nil {
				return nil
			}
			ev, err := DecodeEvent([]byte(m.Payload))
			if err != nil {
				log.Warn("bad event payload", "error", err)
				continue
			}
			onEvent(ev)
		}
	}
}

// DecodeEvent parses a published envelope.
func DecodeEvent(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, err
	}
	if ev.Kind == "" {
		return Event{}, fmt.Errorf("event kind missing")
	}
	return ev, nil
}
