package pallet

import "log/slog"

// options holds the tunable behavior shared by both warehouse
// implementations.
type options struct {
	logger   *slog.Logger
	strictIO bool
	idColumn string
}

func defaultOptions() options {
	return options{
		logger:   slog.New(slog.DiscardHandler),
		idColumn: DefaultIdentifierColumn,
	}
}

// Option configures a warehouse.
type Option func(*options)

// WithLogger sets the structured logger. The default discards all output,
// which is the right choice for library use.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrictIO surfaces storage read failures to the caller. Without it
// the warehouse runs in compatibility mode: unreadable partitions behave
// as if they held no data, and the failure is only logged at debug level.
func WithStrictIO() Option {
	return func(o *options) {
		o.strictIO = true
	}
}

// WithIdentifierColumn overrides the column used for partition routing.
func WithIdentifierColumn(name string) Option {
	return func(o *options) {
		if name != "" {
			o.idColumn = name
		}
	}
}
