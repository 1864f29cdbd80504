package producer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/streamcast/pkg/stream"
)

// DefaultHeartbeatInterval is how often liveness events are emitted.
const DefaultHeartbeatInterval = 30 * time.Second

// HeartbeatOption configures a Heartbeat.
type HeartbeatOption func(*Heartbeat)

// WithHeartbeatInterval sets the emit interval.
func WithHeartbeatInterval(d time.Duration) HeartbeatOption {
	return func(p *Heartbeat) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClientCount supplies a function reporting the current subscriber
// count, included in every heartbeat payload.
func WithClientCount(fn func() int) HeartbeatOption {
	return func(p *Heartbeat) {
		if fn != nil {
			p.clients = fn
		}
	}
}

// WithHeartbeatLogger supplies a structured logger.
func WithHeartbeatLogger(log *slog.Logger) HeartbeatOption {
	return func(p *Heartbeat) {
		if log != nil {
			p.log = log
		}
	}
}

// Heartbeat emits liveness events on a fixed interval. The payload carries
// the emit timestamp and, when configured, the current client count.
type Heartbeat struct {
	hub      Broadcaster
	log      *slog.Logger
	interval time.Duration
	clients  func() int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHeartbeat creates a heartbeat producer writing into hub.
func NewHeartbeat(hub Broadcaster, opts ...HeartbeatOption) *Heartbeat {
	p := &Heartbeat{
		hub:      hub,
		log:      slog.New(slog.DiscardHandler),
		interval: DefaultHeartbeatInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the heartbeat loop. Calling Start on a running heartbeat is
// a no-op.
func (p *Heartbeat) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.loop(ctx)

	p.log.Info("heartbeat started", slog.Duration("interval", p.interval))
}

// Stop cancels the heartbeat loop and waits for it to exit. Safe to call
// multiple times.
func (p *Heartbeat) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
	p.log.Info("heartbeat stopped")
}

// Running reports whether the heartbeat loop is active.
func (p *Heartbeat) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Heartbeat) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.hub.Broadcast(stream.NewEvent(stream.CategoryHeartbeat, p.payload()))
		}
	}
}

func (p *Heartbeat) payload() map[string]any {
	payload := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if p.clients != nil {
		payload["clients"] = p.clients()
	}
	return payload
}
