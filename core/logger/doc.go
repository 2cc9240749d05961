// Package logger builds structured slog loggers and ships attribute helpers
// for the framework's common logging patterns.
//
//	log := logger.New(
//		logger.WithProduction("demo"),
//	)
//	log.Info("server starting",
//		logger.Component("server"),
//	)
//
// FromConfig builds a logger from LOG_LEVEL and LOG_FORMAT environment
// variables. Attribute helpers follow the empty-Attr pattern: a nil error or
// empty id produces an attribute slog drops, so call sites stay free of nil
// checks.
package logger
