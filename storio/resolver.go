package storio

import (
	"context"
)

// Cursor is a forward-only view over the rows of one query execution.
// It is exclusively owned by the Get operation that executed the query and
// is closed on every exit path.
type Cursor interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// RowStore is the store collaborator a Get operation executes against.
// It turns descriptors into cursors, owns the read-only type registry
// populated at configuration time, and provides change notifications for
// live observation.
type RowStore interface {
	ChangeNotifier

	GetCursor(ctx context.Context, query Query) (Cursor, error)
	RawCursor(ctx context.Context, rawQuery RawQuery) (Cursor, error)
	Registry() *TypeRegistry
}

// GetResolver is the strategy pair of a Get operation: execute a descriptor
// against the store to obtain a Cursor, and map the cursor's current row
// into a typed object.
//
// Resolvers must be stateless and reentrant; one resolver value may be
// shared across operations and goroutines.
type GetResolver[T any] interface {
	PerformGet(ctx context.Context, store RowStore, query Query) (Cursor, error)
	PerformGetRaw(ctx context.Context, store RowStore, rawQuery RawQuery) (Cursor, error)
	MapFromCursor(cursor Cursor) (T, error)
}

/***** GetResolverFuncs *****/

// GetResolverFuncs adapts plain functions to the GetResolver interface.
// Map is required; the perform functions default to executing the descriptor
// through the store when nil.
type GetResolverFuncs[T any] struct {
	PerformGetFunc    func(ctx context.Context, store RowStore, query Query) (Cursor, error)
	PerformGetRawFunc func(ctx context.Context, store RowStore, rawQuery RawQuery) (Cursor, error)
	MapFunc           func(cursor Cursor) (T, error)
}

// NewGetResolver creates a GetResolver that executes descriptors through the
// store's default cursor methods and maps rows with the given function.
func NewGetResolver[T any](mapFromCursor func(cursor Cursor) (T, error)) GetResolver[T] {
	return GetResolverFuncs[T]{MapFunc: mapFromCursor}
}

func (r GetResolverFuncs[T]) PerformGet(ctx context.Context, store RowStore, query Query) (Cursor, error) {
	if r.PerformGetFunc != nil {
		return r.PerformGetFunc(ctx, store, query)
	}

	return store.GetCursor(ctx, query)
}

func (r GetResolverFuncs[T]) PerformGetRaw(ctx context.Context, store RowStore, rawQuery RawQuery) (Cursor, error) {
	if r.PerformGetRawFunc != nil {
		return r.PerformGetRawFunc(ctx, store, rawQuery)
	}

	return store.RawCursor(ctx, rawQuery)
}

func (r GetResolverFuncs[T]) MapFromCursor(cursor Cursor) (T, error) {
	return r.MapFunc(cursor)
}
