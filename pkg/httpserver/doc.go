// Package httpserver wraps net/http's Server with graceful shutdown, signal
// handling, and structured logging.
//
//	srv := httpserver.New(
//		httpserver.WithAddr(":8000"),
//		httpserver.WithLogger(log),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Run blocks until the context is cancelled, an interrupt signal arrives, or
// the listener fails. Streaming endpoints need WriteTimeout left at zero;
// the zero-value defaults here keep long-lived SSE connections open.
package httpserver
