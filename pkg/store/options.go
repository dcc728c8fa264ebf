package store

import (
	"github.com/goliatone/go-ptrstore/pkg/activity"
	"github.com/goliatone/go-ptrstore/pkg/compare"
)

// Scheduler arranges for flush to run once the write that queued deferred
// mutations is done. It is called at most once per batch of deferred writes
// queued outside a notification cascade, after the store lock is released.
type Scheduler func(flush func())

// InlineScheduler runs flush on the writer's goroutine before the queuing
// Set or Delete returns. It is the default: a deferred write issued outside
// a cascade is applied, and its subscribers notified, before the writer's
// next statement runs.
func InlineScheduler(flush func()) {
	flush()
}

// GoroutineScheduler runs flush on a new goroutine. Deferred writes then race
// with later writes from the caller, and subscribers run on that goroutine.
func GoroutineScheduler(flush func()) {
	go flush()
}

// ManualScheduler never runs flush; deferred writes wait for an explicit
// Store.Flush or for the next notification cascade to finish.
func ManualScheduler(func()) {}

// Option configures a Store.
type Option func(*config)

type config struct {
	strictness compare.Strictness
	nextTick   bool
	comparer   compare.Comparer
	logger     Logger
	emitter    *activity.Emitter
	actor      activity.Actor
	metrics    *Metrics
	scheduler  Scheduler
}

func defaultConfig() config {
	return config{
		strictness: compare.None,
		logger:     noopLogger{},
		scheduler:  InlineScheduler,
	}
}

// WithStrictness sets the policy used when Get is called without one.
func WithStrictness(s compare.Strictness) Option {
	return func(cfg *config) {
		if s != "" {
			cfg.strictness = s
		}
	}
}

// WithNextTick makes deferred writes the default for Set and Delete.
func WithNextTick(enabled bool) Option {
	return func(cfg *config) {
		cfg.nextTick = enabled
	}
}

// WithComparer resolves strictness tags that are not built in.
func WithComparer(cmp compare.Comparer) Option {
	return func(cfg *config) {
		cfg.comparer = cmp
	}
}

// WithLogger attaches a Logger. Nil restores the silent default.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithActivity emits an activity event for every applied mutation.
func WithActivity(emitter *activity.Emitter, actor activity.Actor) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
		cfg.actor = actor
	}
}

// WithMetrics reports store activity to m.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}

// WithScheduler replaces the scheduler used for deferred writes.
func WithScheduler(s Scheduler) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.scheduler = s
		}
	}
}

// WriteOption adjusts a single Set or Delete call.
type WriteOption func(*writeConfig)

type writeConfig struct {
	nextTick bool
}

// NextTick defers the write until the current notification cascade ends.
func NextTick() WriteOption {
	return func(cfg *writeConfig) {
		cfg.nextTick = true
	}
}

// Immediate applies the write synchronously regardless of the store default.
func Immediate() WriteOption {
	return func(cfg *writeConfig) {
		cfg.nextTick = false
	}
}
