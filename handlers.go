package streamcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/streamcast/pkg/logger"
	"github.com/dmitrymomot/streamcast/pkg/sse"
	"github.com/dmitrymomot/streamcast/pkg/stream"
)

// Router returns the HTTP surface of the service: status root, health
// endpoint, session introspection, and the SSE stream.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/sessions", s.handleSessions)
	r.Get("/stream", s.handleStream)

	return r
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "running",
		"clients": s.hub.Count(),
		"endpoints": map[string]string{
			"stream": "/stream",
			"health": "/health",
		},
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	eventProducer := "disabled"
	if s.sampler != nil {
		eventProducer = runningState(s.sampler.Running())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"connected_clients": s.hub.Count(),
		"history_size":      s.hub.HistorySize(),
		"producers": map[string]string{
			"event_producer":     eventProducer,
			"heartbeat_producer": runningState(s.heartbeat.Running()),
		},
	})
}

func (s *Service) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    s.hub.Count(),
		"sessions": s.hub.Sessions(),
	})
}

// handleStream is the per-subscriber delivery loop: it registers a session
// for the lifetime of the connection, replays missed events when a resume
// token is present, then drains the session queue applying the topic filter
// and the SSE encoding. Unregistration is deferred so the session is released
// on every exit path.
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess, err := s.hub.Register(r.Context(), sessionOptions(r)...)
	if err != nil {
		http.Error(w, "service is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.hub.Unregister(sess.ID())

	sse.PrepareHeaders(w)
	w.WriteHeader(http.StatusOK)
	if err := sse.WriteComment(w, "connected"); err != nil {
		return
	}
	flusher.Flush()

	if token := resumeToken(r); token != "" {
		if replayed := s.hub.Replay(token, sess); replayed > 0 {
			s.log.Info("replayed missed events",
				logger.SessionID(sess.ID()),
				logger.Component("stream"),
				slog.Int("count", replayed))
		}
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, open := <-sess.Events():
			if !open {
				// Disconnected by the hub: fell behind or shutdown.
				return
			}
			if !stream.ShouldDeliver(sess, e) {
				continue
			}
			if err := sse.WriteEvent(w, e); err != nil {
				s.log.Warn("stream write failed",
					logger.SessionID(sess.ID()),
					logger.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

// sessionOptions maps the /stream query parameters onto session metadata.
func sessionOptions(r *http.Request) []stream.SessionOption {
	q := r.URL.Query()
	var opts []stream.SessionOption

	if name := q.Get("name"); name != "" {
		opts = append(opts, stream.WithName(name))
	}
	if tags := splitParam(q.Get("tags")); len(tags) > 0 {
		opts = append(opts, stream.WithTags(tags...))
	}
	if topics := splitParam(q.Get("topics")); len(topics) > 0 {
		opts = append(opts, stream.WithTopics(topics...))
	}
	if strict := q.Get("strict"); strict == "true" || strict == "1" {
		opts = append(opts, stream.WithStrictTopics())
	}
	return opts
}

// resumeToken extracts the id of the last event the client processed,
// preferring the standard SSE reconnect header.
func resumeToken(r *http.Request) string {
	if token := r.Header.Get("Last-Event-ID"); token != "" {
		return token
	}
	return r.URL.Query().Get("last_event_id")
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func runningState(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
