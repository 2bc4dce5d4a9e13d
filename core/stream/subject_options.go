package stream

import "log/slog"

type subjectOptions struct {
	description string
	logger      *slog.Logger
}

// SubjectOption configures a PassthroughSubject.
type SubjectOption func(*subjectOptions)

// WithLogger sets the logger for lifecycle events (attach, completion, close).
// Values are never logged.
func WithLogger(logger *slog.Logger) SubjectOption {
	return func(o *subjectOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDescription sets the name the subject and its subscriptions report
// through String. Defaults to "PassthroughSubject".
func WithDescription(description string) SubjectOption {
	return func(o *subjectOptions) {
		if description != "" {
			o.description = description
		}
	}
}
