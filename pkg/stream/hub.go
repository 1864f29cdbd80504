package stream

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

const (
	// DefaultQueueSize is the per-session queue capacity when none is configured.
	DefaultQueueSize = 100
	// DefaultHistorySize is the replay window when none is configured.
	DefaultHistorySize = 1000
)

// Option configures a Hub at construction time.
type Option func(*Hub)

// WithQueueSize sets the per-session queue capacity. The capacity is a hard
// bound: the first broadcast that finds a session's queue full disconnects
// that session.
func WithQueueSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithHistorySize sets how many recent events are retained for replay.
func WithHistorySize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.historySize = n
		}
	}
}

// WithLogger supplies a structured logger. Without it the hub is silent.
func WithLogger(log *slog.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// Hub is the session registry and broadcast engine. All registry mutation
// (register, unregister, the broadcast delivery pass) is serialized through a
// single mutex; the history buffer carries its own lock. Broadcast never
// blocks on a slow consumer: enqueues are non-blocking and a full queue
// disconnects its session instead of delaying anyone else.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session
	history  *History
	closed   bool

	queueSize   int
	historySize int
	log         *slog.Logger
	wg          sync.WaitGroup
}

// NewHub creates a ready-to-use hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:    make(map[string]*Session),
		queueSize:   DefaultQueueSize,
		historySize: DefaultHistorySize,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.history = NewHistory(h.historySize)
	return h
}

// Register creates a session with a fresh id and a bounded queue and adds it
// to the registry. The session is automatically unregistered when ctx is
// cancelled, so a delivery loop that ties ctx to its connection gets cleanup
// on every exit path. It fails only when the hub is closed.
func (h *Hub) Register(ctx context.Context, opts ...SessionOption) (*Session, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	sess := newSession(h.queueSize, opts...)
	h.sessions[sess.id] = sess
	total := len(h.sessions)
	h.mu.Unlock()

	h.log.Info("session registered",
		slog.String("session_id", sess.id),
		slog.String("name", sess.name),
		slog.Int("clients", total))

	if ctx != nil && ctx.Done() != nil {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			select {
			case <-ctx.Done():
				h.Unregister(sess.id)
			case <-sess.done:
			}
		}()
	}

	return sess, nil
}

// Unregister removes the session and closes its queue. It is idempotent and
// safe to call concurrently with Register and Broadcast.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	sess, ok := h.sessions[id]
	if ok {
		h.remove(sess)
	}
	total := len(h.sessions)
	h.mu.Unlock()

	if ok {
		h.log.Info("session unregistered",
			slog.String("session_id", id),
			slog.Int("clients", total))
	}
}

// Broadcast records the event in the history buffer and enqueues it to every
// registered session. History is recorded regardless of subscriber count.
// Sessions whose queue is already at capacity are disconnected after the
// delivery pass; the event still reaches all other sessions. Broadcast
// completes without waiting: it holds the registry lock only for the
// non-blocking delivery pass.
//
// Events broadcast through serialized calls are delivered to every surviving
// session in call order, and the history records them in the same order.
func (h *Hub) Broadcast(e Event) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.history.Record(e)

	var dropped []*Session
	for _, sess := range h.sessions {
		if !sess.enqueue(e) {
			dropped = append(dropped, sess)
		}
	}
	for _, sess := range dropped {
		h.remove(sess)
	}
	total := len(h.sessions)
	h.mu.Unlock()

	for _, sess := range dropped {
		h.log.Warn("session queue full, disconnecting",
			slog.String("session_id", sess.id),
			slog.String("name", sess.name),
			slog.Int("clients", total))
	}
}

// Replay enqueues the retained events after lastID onto the session's queue,
// in order, and returns how many were enqueued. It stops early, without
// disconnecting the session, if the queue fills. An unknown or already-latest
// lastID replays nothing. The session must still be registered.
func (h *Hub) Replay(lastID string, sess *Session) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[sess.id]; !ok {
		return 0
	}
	replayed := 0
	for _, e := range h.history.SuffixAfter(lastID) {
		if !sess.enqueue(e) {
			break
		}
		replayed++
	}
	return replayed
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Sessions returns metadata snapshots of all registered sessions, ordered by
// connection time.
func (h *Hub) Sessions() []SessionInfo {
	h.mu.Lock()
	infos := make([]SessionInfo, 0, len(h.sessions))
	for _, sess := range h.sessions {
		infos = append(infos, sess.Info())
	}
	h.mu.Unlock()

	slices.SortFunc(infos, func(a, b SessionInfo) int {
		return a.ConnectedAt.Compare(b.ConnectedAt)
	})
	return infos
}

// HistorySize returns the number of events currently retained for replay.
func (h *Hub) HistorySize() int {
	return h.history.Size()
}

// LatestID returns the resume token of the most recent event, if any.
func (h *Hub) LatestID() (string, bool) {
	return h.history.LatestID()
}

// Close disconnects all sessions and rejects further registrations. It is
// safe to call multiple times.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for _, sess := range h.sessions {
		h.remove(sess)
	}
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}

// remove deletes the session and closes its channels. Callers must hold h.mu;
// the queue is only ever closed here, under the same lock that guards
// enqueues, so sends can never race a close.
func (h *Hub) remove(sess *Session) {
	delete(h.sessions, sess.id)
	close(sess.queue)
	close(sess.done)
}
