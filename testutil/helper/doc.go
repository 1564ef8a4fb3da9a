// Package helper provides shared test doubles for the storio packages:
// spies for the observability interfaces (logger, metrics, tracing) used to
// assert instrumentation behavior without a real backend.
package helper
