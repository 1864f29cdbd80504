// Package producer contains the event sources feeding the fan-out hub: a
// sampler emitting randomized metric, log, and alert events, and a heartbeat
// emitting liveness events on a fixed interval.
//
// Producers write into the hub through the narrow Broadcaster interface and
// own their goroutine lifecycle: Start launches the loop, Stop cancels it and
// waits for it to exit. A fault inside a producer's generation logic is
// contained and logged; it never propagates into the hub or interrupts other
// producers.
package producer
