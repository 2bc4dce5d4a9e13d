// Package logger provides slog attribute helpers shared by the stream engine
// and its integrations.
//
// Helpers follow the empty Attr pattern: a helper given a nil error or an
// empty identifier returns slog.Attr{}, which slog drops, so call sites never
// need nil checks:
//
//	log.Error("upstream receive failed",
//		logger.Channel(channel),
//		logger.Error(err))
//
// Stream-specific helpers (Ticket, SubscriberID, Demand, Completion, Channel)
// take already rendered values so this package has no dependency on the
// stream types themselves.
package logger
