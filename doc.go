// Package streamcast wires the fan-out engine, producers, and HTTP transport
// into a push-streaming service.
//
// The Service owns a stream.Hub, an event sampler, and a heartbeat producer,
// and exposes them over three endpoints: a status root, a health surface, and
// the /stream SSE endpoint. Subscribers connect to /stream with optional
// query parameters (name, tags, topics, strict) and resume after a disconnect
// by sending the Last-Event-ID header.
//
//	svc := streamcast.New(streamcast.WithLogger(log))
//	svc.Start(ctx)
//	defer svc.Stop()
//
//	srv := httpserver.New(httpserver.WithAddr(":8000"), httpserver.WithLogger(log))
//	err := srv.Run(ctx, svc.Router())
//
// The engine itself lives in pkg/stream and can be embedded without this
// transport layer.
package streamcast
