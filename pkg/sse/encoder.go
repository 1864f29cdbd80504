package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrymomot/streamcast/pkg/stream"
)

// DefaultRetry is the reconnection delay hint, in milliseconds, written into
// every frame.
const DefaultRetry = 5000

// WriteEvent writes one complete SSE frame for the event. The payload is
// serialized with encoding/json, which yields a canonical form with sorted
// object keys.
func WriteEvent(w io.Writer, e stream.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("sse: marshal payload for event %s: %w", e.ID, err)
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\nretry: %d\n\n",
		e.ID, e.Category, payload, DefaultRetry); err != nil {
		return fmt.Errorf("sse: write event %s: %w", e.ID, err)
	}
	return nil
}

// Encode returns the SSE frame for the event as a string.
func Encode(e stream.Event) (string, error) {
	var b strings.Builder
	if err := WriteEvent(&b, e); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteComment writes an SSE comment frame. Comments are ignored by
// compliant clients and are used for connection notices and keep-alives.
func WriteComment(w io.Writer, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("sse: write comment: %w", err)
	}
	return nil
}

// PrepareHeaders sets the response headers an event-stream response needs,
// including the header that disables proxy buffering.
func PrepareHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}
