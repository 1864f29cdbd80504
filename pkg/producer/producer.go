package producer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/streamcast/pkg/stream"
)

// Broadcaster is the write path into the fan-out engine. *stream.Hub
// satisfies it.
type Broadcaster interface {
	Broadcast(e stream.Event)
}

const (
	// DefaultMinInterval is the shortest pause between sampled events.
	DefaultMinInterval = 500 * time.Millisecond
	// DefaultMaxInterval is the longest pause between sampled events.
	DefaultMaxInterval = 2 * time.Second
)

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithSampleInterval sets the jitter bounds between emitted events.
func WithSampleInterval(min, max time.Duration) SamplerOption {
	return func(p *Sampler) {
		if min > 0 && max >= min {
			p.minInterval = min
			p.maxInterval = max
		}
	}
}

// WithSamplerLogger supplies a structured logger.
func WithSamplerLogger(log *slog.Logger) SamplerOption {
	return func(p *Sampler) {
		if log != nil {
			p.log = log
		}
	}
}

// Sampler emits randomized data events (metrics, logs, alerts) at a jittered
// interval. It exists to exercise the streaming pipeline end to end and as a
// template for real producers.
type Sampler struct {
	hub Broadcaster
	log *slog.Logger

	minInterval time.Duration
	maxInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSampler creates a sampler writing into hub.
func NewSampler(hub Broadcaster, opts ...SamplerOption) *Sampler {
	p := &Sampler{
		hub:         hub,
		log:         slog.New(slog.DiscardHandler),
		minInterval: DefaultMinInterval,
		maxInterval: DefaultMaxInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the produce loop. Calling Start on a running sampler is a
// no-op. The loop stops when ctx is cancelled or Stop is called.
func (p *Sampler) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.loop(ctx)

	p.log.Info("event producer started")
}

// Stop cancels the produce loop and waits for it to exit. Safe to call
// multiple times.
func (p *Sampler) Stop() {
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
	p.log.Info("event producer stopped")
}

// Running reports whether the produce loop is active.
func (p *Sampler) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Sampler) loop(ctx context.Context) {
	defer close(p.done)

	timer := time.NewTimer(p.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.emit()
			timer.Reset(p.nextInterval())
		}
	}
}

// emit broadcasts one sampled event. Generation faults stay local to the
// producer: the engine has no dependency on producer health.
func (p *Sampler) emit() {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("sample generation failed", slog.Any("panic", r))
		}
	}()
	p.hub.Broadcast(stream.NewEvent(stream.CategoryData, p.sample()))
}

func (p *Sampler) nextInterval() time.Duration {
	jitter := p.maxInterval - p.minInterval
	if jitter <= 0 {
		return p.minInterval
	}
	return p.minInterval + rand.N(jitter)
}

func (p *Sampler) sample() map[string]any {
	switch rand.IntN(4) {
	case 0:
		return map[string]any{
			"type":  "metric",
			"name":  "cpu_usage",
			"value": rand.Float64() * 100,
		}
	case 1:
		return map[string]any{
			"type":  "metric",
			"name":  "memory_usage",
			"value": rand.Float64() * 100,
		}
	case 2:
		return map[string]any{
			"type":    "log",
			"level":   "INFO",
			"message": fmt.Sprintf("process %s", uuid.New()),
		}
	default:
		severities := []string{"low", "medium", "high"}
		return map[string]any{
			"type":     "alert",
			"severity": severities[rand.IntN(len(severities))],
		}
	}
}
