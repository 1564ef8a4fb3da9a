package sqlengine

import (
	"context"
	"math"
	"time"

	"github.com/MrZLO/storio/storio"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (s *Store) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s *Store) logError(
	ctx context.Context,
	message string,
	err error,
	args ...any,
) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordErrorMetricsContext records error metrics with context if the collector supports it.
func (s *Store) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(storio.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricStoreErrors, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricStoreErrors, labels)
	}
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (s *Store) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := s.metricsCollector.(storio.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		s.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// incrementCounterContext increments a counter metric with context if the collector supports it.
func (s *Store) incrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(storio.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricName, labels)
	} else {
		s.metricsCollector.IncrementCounter(metricName, labels)
	}
}

// startSpan starts a tracing span if a tracing collector is configured.
// It returns the (possibly span-carrying) context and a nil-safe span handle.
func (s *Store) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, storio.SpanContext) {
	if s.tracingCollector == nil {
		return ctx, nil
	}

	return s.tracingCollector.StartSpan(ctx, name, attrs)
}

// finishSpan finishes a tracing span if one was started.
func (s *Store) finishSpan(span storio.SpanContext, status string) {
	if s.tracingCollector == nil || span == nil {
		return
	}

	s.tracingCollector.FinishSpan(span, status, nil)
}
