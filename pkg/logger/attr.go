package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// SessionID records the subscriber session identifier under "session_id".
func SessionID(id string) slog.Attr {
	return slog.String("session_id", id)
}

// EventID records the event identifier under "event_id".
func EventID(id string) slog.Attr {
	return slog.String("event_id", id)
}

// Component records the emitting component under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
