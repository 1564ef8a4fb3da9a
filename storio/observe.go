package storio

import (
	"context"
	"errors"
	"sync"
)

// GetResult is one emission of an observed Get operation. Found mirrors the
// blocking execution result; a non-nil Err is the stream's terminal emission.
type GetResult[T any] struct {
	Object T
	Found  bool
	Err    error
}

// Observe creates a hot subscription for this Get operation.
//
// The first result is executed and emitted immediately after subscription.
// After that, every change notification affecting one of the observed tables
// triggers exactly one re-execution whose result is emitted in notification
// order; re-executions are serialized on the subscription's worker goroutine,
// never on the subscriber's goroutine. When the operation observes no tables
// (a RawQuery without observed tables) the stream carries only the initial
// result but stays open until unsubscribed.
//
// The stream is endless. Always call Unsubscribe (or cancel ctx), otherwise
// the change subscription leaks. An execution failure is emitted as a
// GetResult with Err set, then the stream terminates and the results channel
// is closed.
func (op PreparedGetObject[T]) Observe(ctx context.Context) (*GetSubscription[T], error) {
	subscription := &GetSubscription[T]{
		results: make(chan GetResult[T]),
		done:    make(chan struct{}),
	}

	if tables := op.ObservedTables(); len(tables) > 0 {
		changeSub, observeErr := op.store.ObserveChanges(tables)
		if observeErr != nil {
			return nil, errors.Join(ErrGetOperationFailed, observeErr)
		}

		subscription.changeSub = changeSub
	}

	go subscription.run(ctx, op)

	return subscription, nil
}

/***** GetSubscription *****/

// GetSubscription is one live subscription created by Observe. Results
// delivers the emissions; the channel is closed when the stream terminates,
// after Unsubscribe, context cancellation or an error emission.
type GetSubscription[T any] struct {
	results     chan GetResult[T]
	done        chan struct{}
	changeSub   ChangeSubscription
	unsubscribe sync.Once
}

// Results returns the emission channel. Consume it promptly: emissions are
// delivered synchronously and an unread result blocks the re-execution worker
// until it is received or the subscription ends.
func (s *GetSubscription[T]) Results() <-chan GetResult[T] {
	return s.results
}

// Unsubscribe stops further emissions and releases the change subscription.
// It is idempotent and safe to call from any goroutine; the release happens
// exactly once.
func (s *GetSubscription[T]) Unsubscribe() {
	s.unsubscribe.Do(func() {
		close(s.done)

		if s.changeSub != nil {
			s.changeSub.Unsubscribe()
		}
	})
}

// run is the per-subscription worker. It serializes all executions so that
// emission order matches notification arrival order.
func (s *GetSubscription[T]) run(ctx context.Context, op PreparedGetObject[T]) {
	defer close(s.results)
	defer s.Unsubscribe()

	// Initial replay: always delivered before any change-triggered result.
	if !s.execute(ctx, op) {
		return
	}

	if s.changeSub == nil {
		// Nothing to observe; stay open until cancelled.
		select {
		case <-s.done:
		case <-ctx.Done():
		}

		return
	}

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case _, open := <-s.changeSub.Changes():
			if !open {
				return
			}

			if !s.execute(ctx, op) {
				return
			}
		}
	}
}

// execute runs one blocking execution and emits its result. It reports
// whether the stream should continue.
func (s *GetSubscription[T]) execute(ctx context.Context, op PreparedGetObject[T]) bool {
	object, found, err := op.ExecuteBlocking(ctx)

	select {
	case s.results <- GetResult[T]{Object: object, Found: found, Err: err}:
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}

	return err == nil
}
