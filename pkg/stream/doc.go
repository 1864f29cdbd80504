// Package stream provides the fan-out engine behind the push-streaming API:
// a concurrency-safe session registry, per-session bounded delivery queues,
// a fixed-capacity event history for reconnection replay, and the topic
// filter applied by delivery loops.
//
// Delivery is best-effort by design. Broadcasting never blocks on a slow
// consumer: when a session's queue is full at broadcast time the session is
// disconnected rather than stalling producers or other subscribers. Replay
// after a reconnect is bounded by the history capacity; a resume token that
// has already been evicted simply yields an empty replay.
//
// Basic usage:
//
//	hub := stream.NewHub(stream.WithQueueSize(100))
//	defer hub.Close()
//
//	sess, err := hub.Register(ctx, stream.WithTopics("cpu", "memory"))
//	if err != nil {
//		// hub already closed
//	}
//	defer hub.Unregister(sess.ID())
//
//	go hub.Broadcast(stream.NewEvent(stream.CategoryData, map[string]any{
//		"type":  "cpu",
//		"value": 42.0,
//	}))
//
//	for e := range sess.Events() {
//		if stream.ShouldDeliver(sess, e) {
//			// encode and write to the client
//		}
//	}
//
// Event ordering is defined by the order Broadcast is called, never by event
// timestamps. Callers that require a total order across events must serialize
// their Broadcast calls.
package stream
