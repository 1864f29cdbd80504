package stream

// ShouldDeliver reports whether the event passes the session's topic
// subscription. It is a pure per-consumer decision applied by delivery loops
// after dequeue; filtered events still occupied queue capacity and counted
// toward backpressure.
//
// Rules, in order:
//   - a session without a topic subscription receives everything;
//   - heartbeat events pass any non-strict filter regardless of the
//     subscribed topics, so clients keep seeing liveness signals by default;
//   - otherwise the event's effective topic must be in the subscribed set.
//
// The heartbeat bypass is a deliberate default-visibility decision: opting
// out requires WithStrictTopics at registration.
func ShouldDeliver(sess *Session, e Event) bool {
	if len(sess.topics) == 0 {
		return true
	}
	if e.Category == CategoryHeartbeat && !sess.strict {
		return true
	}
	_, ok := sess.topics[e.Topic()]
	return ok
}
