// Package sse encodes stream events into Server-Sent Events wire frames.
//
// Every frame carries the same lines in the same order: the event id, the
// category as the SSE event name, the payload serialized to JSON, a fixed
// retry hint, and a blank terminator line. Downstream parsers depend on both
// the ordering and the blank line that delimits records in a continuous
// stream, so the layout is deliberately not configurable.
//
//	id: 550e8400-e29b-41d4-a716-446655440000
//	event: data
//	data: {"message":"hello","type":"log"}
//	retry: 5000
//
// The event id doubles as the resume token clients send back through the
// Last-Event-ID header on reconnect.
package sse
