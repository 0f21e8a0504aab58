package index

import "log/slog"

// DefaultMaxSymbols bounds the index when no limit is configured.
const DefaultMaxSymbols = 1_000_000

// Metrics receives index events. observ.Metrics implements it.
type Metrics interface {
	FileIndexed(symbols int)
	IndexSize(symbols int)
}

type options struct {
	maxSymbols int
	logger     *slog.Logger
	metrics    Metrics
}

// Option configures an Index.
type Option func(*options)

// WithMaxSymbols caps the number of symbols the index holds. An update that
// would pass the cap fails with ErrMaxSymbols and changes nothing.
func WithMaxSymbols(n int) Option {
	return func(o *options) {
		o.maxSymbols = n
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func defaultOptions() options {
	return options{
		maxSymbols: DefaultMaxSymbols,
		logger:     slog.New(slog.DiscardHandler),
	}
}
