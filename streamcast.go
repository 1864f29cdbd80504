package streamcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/streamcast/pkg/producer"
	"github.com/dmitrymomot/streamcast/pkg/stream"
)

// Option configures the Service.
type Option func(*Service)

// WithLogger supplies a structured logger used by the service, the hub, and
// the producers.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithQueueSize sets the per-session queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithHistorySize sets the replay window.
func WithHistorySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithHeartbeatInterval sets how often heartbeat events are emitted.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.heartbeatInterval = d
		}
	}
}

// WithSampleInterval sets the jitter bounds of the demo event sampler.
func WithSampleInterval(min, max time.Duration) Option {
	return func(s *Service) {
		if min > 0 && max >= min {
			s.sampleMin = min
			s.sampleMax = max
		}
	}
}

// WithoutSampler disables the demo event sampler; only heartbeats and
// events broadcast through Hub() flow to subscribers.
func WithoutSampler() Option {
	return func(s *Service) {
		s.noSampler = true
	}
}

// Service bundles the fan-out hub with its producers and HTTP surface.
type Service struct {
	hub       *stream.Hub
	sampler   *producer.Sampler
	heartbeat *producer.Heartbeat
	log       *slog.Logger

	queueSize         int
	historySize       int
	heartbeatInterval time.Duration
	sampleMin         time.Duration
	sampleMax         time.Duration
	noSampler         bool
}

// New assembles a service. Producers are created but not started; call Start.
func New(opts ...Option) *Service {
	s := &Service{
		log:               slog.New(slog.DiscardHandler),
		queueSize:         stream.DefaultQueueSize,
		historySize:       stream.DefaultHistorySize,
		heartbeatInterval: producer.DefaultHeartbeatInterval,
		sampleMin:         producer.DefaultMinInterval,
		sampleMax:         producer.DefaultMaxInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hub = stream.NewHub(
		stream.WithQueueSize(s.queueSize),
		stream.WithHistorySize(s.historySize),
		stream.WithLogger(s.log),
	)
	if !s.noSampler {
		s.sampler = producer.NewSampler(s.hub,
			producer.WithSampleInterval(s.sampleMin, s.sampleMax),
			producer.WithSamplerLogger(s.log),
		)
	}
	s.heartbeat = producer.NewHeartbeat(s.hub,
		producer.WithHeartbeatInterval(s.heartbeatInterval),
		producer.WithClientCount(s.hub.Count),
		producer.WithHeartbeatLogger(s.log),
	)
	return s
}

// Hub exposes the fan-out engine so external producers can broadcast their
// own events.
func (s *Service) Hub() *stream.Hub {
	return s.hub
}

// Start launches the producers. Their loops stop when ctx is cancelled or
// Stop is called.
func (s *Service) Start(ctx context.Context) {
	if s.sampler != nil {
		s.sampler.Start(ctx)
	}
	s.heartbeat.Start(ctx)
	s.log.Info("all producers started")
}

// Stop halts the producers and disconnects every subscriber.
func (s *Service) Stop() {
	if s.sampler != nil {
		s.sampler.Stop()
	}
	s.heartbeat.Stop()
	_ = s.hub.Close()
	s.log.Info("shutdown complete")
}
