package sqlengine

import (
	"github.com/MrZLO/storio/storio"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithDialect sets the goqu SQL dialect the store builds structured queries
// with. The matching goqu dialect package must be imported by the caller
// (the engine imports postgres and sqlite3 itself).
func WithDialect(dialect string) Option {
	return func(s *Store) error {
		if dialect == "" {
			return storio.ErrEmptyDialect
		}

		s.dialect = dialect

		return nil
	}
}

// WithTypeRegistry sets the registry of default resolvers per result type.
// The registry must be fully populated before the store is used and not
// mutated afterwards.
func WithTypeRegistry(registry *storio.TypeRegistry) Option {
	return func(s *Store) error {
		if registry == nil {
			return storio.ErrNilTypeRegistry
		}

		s.registry = registry

		return nil
	}
}

// WithChangeBufferSize sets how many pending change notifications each
// subscription buffers before publishers start to block.
func WithChangeBufferSize(size int) Option {
	return func(s *Store) error {
		if size <= 0 {
			return storio.ErrInvalidChangeBufferSize
		}

		s.changeBufferSize = size

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Operation outcomes, durations, change publications (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger storio.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// The contextual logger will receive log messages with context information
// including automatic trace/span correlation when tracing is enabled.
// When both loggers are configured, the contextual logger wins.
func WithContextualLogger(logger storio.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// The collector will receive performance and operational metrics including
// query durations, change publications, and database errors.
func WithMetrics(collector storio.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// The collector will receive distributed tracing information including span
// creation for query/exec operations, context propagation, and error tracking.
func WithTracing(collector storio.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
