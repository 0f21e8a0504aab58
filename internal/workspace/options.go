package workspace

import (
	"log/slog"
	"runtime"
	"time"

	"perlsense/internal/index"
	"perlsense/internal/parser"
	"perlsense/internal/source"
	"perlsense/internal/symbols"
)

// Metrics receives workspace events on top of the index ones.
// observ.Metrics implements it.
type Metrics interface {
	index.Metrics
	ParseDone(d time.Duration)
	Reparsed(mode string)
}

// TableCache keeps symbol tables by content digest across sessions.
// driver.DiskCache implements it.
type TableCache interface {
	Get(key [32]byte, file source.FileID) (*symbols.Table, bool, error)
	Put(key [32]byte, table *symbols.Table) error
}

// Progress is called after each file of an indexing run.
type Progress func(done, total int, path string)

type options struct {
	logger     *slog.Logger
	jobs       int
	parser     parser.Options
	check      bool
	metrics    Metrics
	progress   Progress
	maxSymbols int
	cache      TableCache
}

type Option func(*options)

// WithLogger sets the logger shared with the index.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithJobs bounds parallel indexing; zero or less means GOMAXPROCS.
func WithJobs(n int) Option {
	return func(o *options) {
		o.jobs = n
	}
}

func WithParserOptions(p parser.Options) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithChecks validates every reparsed tree. Meant for tests and debugging.
func WithChecks(on bool) Option {
	return func(o *options) {
		o.check = on
	}
}

func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithProgress(fn Progress) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithMaxSymbols is passed on to the index.
func WithMaxSymbols(n int) Option {
	return func(o *options) {
		o.maxSymbols = n
	}
}

// WithTableCache lets indexing skip parsing files whose content was seen
// before. Cache failures are logged and treated as misses.
func WithTableCache(c TableCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

func defaultOptions() options {
	return options{
		logger:     slog.New(slog.DiscardHandler),
		jobs:       runtime.GOMAXPROCS(0),
		maxSymbols: index.DefaultMaxSymbols,
	}
}
