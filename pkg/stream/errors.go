package stream

import "errors"

var (
	// ErrHubClosed is returned when registering on a hub that has been shut down.
	ErrHubClosed = errors.New("stream: hub is closed")
)
