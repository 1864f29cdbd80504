package stream

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// AnonymousName is the display name used when registration supplies none.
const AnonymousName = "anonymous"

// Session is a single subscriber's delivery state: a bounded event queue plus
// metadata. Sessions are created by Hub.Register and destroyed by
// Hub.Unregister, by queue overflow during a broadcast, or by hub shutdown.
// A session is either registered and receiving or fully removed; there is no
// partial-delivery state.
type Session struct {
	id          string
	name        string
	tags        []string
	topics      map[string]struct{}
	strict      bool
	queue       chan Event
	done        chan struct{}
	connectedAt time.Time
	delivered   atomic.Int64
}

// SessionOption configures session metadata at registration time.
type SessionOption func(*Session)

// WithName sets the session's display name. Empty names keep the anonymous
// default.
func WithName(name string) SessionOption {
	return func(s *Session) {
		if name != "" {
			s.name = name
		}
	}
}

// WithTags attaches free-form informational tags. Tags are never used for
// filtering.
func WithTags(tags ...string) SessionOption {
	return func(s *Session) {
		s.tags = append(s.tags, tags...)
	}
}

// WithTopics restricts delivery to the given topics. Without this option the
// session receives everything. Heartbeat events still pass a topic filter
// unless WithStrictTopics is also set.
func WithTopics(topics ...string) SessionOption {
	return func(s *Session) {
		for _, t := range topics {
			if t == "" {
				continue
			}
			if s.topics == nil {
				s.topics = make(map[string]struct{}, len(topics))
			}
			s.topics[t] = struct{}{}
		}
	}
}

// WithStrictTopics disables the heartbeat bypass: heartbeat events are then
// delivered only when "heartbeat" is part of the subscribed topic set.
func WithStrictTopics() SessionOption {
	return func(s *Session) {
		s.strict = true
	}
}

func newSession(queueSize int, opts ...SessionOption) *Session {
	s := &Session{
		id:          uuid.New().String(),
		name:        AnonymousName,
		queue:       make(chan Event, max(queueSize, 1)),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the unique session identifier. IDs are never reused.
func (s *Session) ID() string { return s.id }

// Name returns the display name, "anonymous" when none was supplied.
func (s *Session) Name() string { return s.name }

// Tags returns a copy of the session's informational tags.
func (s *Session) Tags() []string { return slices.Clone(s.tags) }

// Topics returns the subscribed topics in sorted order, or nil when the
// session receives everything.
func (s *Session) Topics() []string {
	if len(s.topics) == 0 {
		return nil
	}
	topics := make([]string, 0, len(s.topics))
	for t := range s.topics {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

// ConnectedAt returns the registration time.
func (s *Session) ConnectedAt() time.Time { return s.connectedAt }

// Delivered returns the number of events enqueued to this session so far.
func (s *Session) Delivered() int64 { return s.delivered.Load() }

// Events returns the receive side of the session's queue. The channel is
// closed when the session is unregistered, disconnected for falling behind,
// or the hub shuts down; consumers should treat a closed channel as the end
// of the stream.
func (s *Session) Events() <-chan Event { return s.queue }

// Done is closed when the session has been removed from the hub.
func (s *Session) Done() <-chan struct{} { return s.done }

// Info returns an immutable snapshot of the session's metadata and counters.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:          s.id,
		Name:        s.name,
		Tags:        s.Tags(),
		Topics:      s.Topics(),
		Strict:      s.strict,
		ConnectedAt: s.connectedAt,
		Delivered:   s.delivered.Load(),
	}
}

// enqueue attempts a non-blocking delivery and reports false when the queue
// is already at capacity. Callers must hold the hub lock so enqueue never
// races with the close of the queue channel.
func (s *Session) enqueue(e Event) bool {
	select {
	case s.queue <- e:
		s.delivered.Add(1)
		return true
	default:
		return false
	}
}

// SessionInfo is a read-only snapshot of a session, safe to hand to status
// and health surfaces.
type SessionInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tags        []string  `json:"tags,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	Strict      bool      `json:"strict,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
	Delivered   int64     `json:"events_delivered"`
}
