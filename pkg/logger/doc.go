// Package logger builds configured slog loggers for the streaming service.
//
// The defaults are production-safe: JSON output at info level. Development
// setups switch to human-readable text with debug level via WithDevelopment.
//
//	log := logger.New(
//		logger.WithService("streamcast"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//	logger.SetAsDefault(log)
//
// The package also ships attribute helpers (Error, SessionID, EventID) that
// keep log keys consistent across the codebase.
package logger
