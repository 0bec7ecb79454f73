// Package logger builds log/slog loggers for paywall binaries and exposes
// attribute helpers so that every component logs the same keys.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "paywall"),
//		logger.WithContextValue("user_id", userIDKey{}),
//	)
//	log.InfoContext(ctx, "subscription started", logger.Plan("premium"))
//
// Defaults are JSON output on stdout at INFO. Development environments switch
// to text at DEBUG. Context extractors add request-scoped attributes at log
// time through a handler decorator.
//
// Library packages never create loggers themselves; they accept a
// *slog.Logger and fall back to Discard.
package logger
