package storio

import (
	"context"
	"errors"
	"fmt"
)

/***** PreparedGetObject *****/

// PreparedGetObject is a prepared single-object Get operation. It holds
// exactly one descriptor variant (Query or RawQuery), the store to execute
// against and an optional explicit resolver, and is immutable once prepared.
//
// If the query matches more than one row, only the first row is mapped; use
// a Limit or a more selective Where clause when the extra rows are costly to
// produce.
type PreparedGetObject[T any] struct {
	store            RowStore
	query            *Query
	rawQuery         *RawQuery
	explicitResolver GetResolver[T]
}

// ExecuteBlocking executes the Get operation synchronously and returns the
// mapped object of the first result row, or found == false when the query
// matches no rows (absence is not an error).
//
// This is blocking I/O. Do not call it from a latency-sensitive goroutine,
// run it from a background goroutine instead; Observe does this for you.
func (op PreparedGetObject[T]) ExecuteBlocking(ctx context.Context) (T, bool, error) {
	var zero T

	resolver, dispatchErr := resolveGetResolver(op.explicitResolver, op.store.Registry())
	if dispatchErr != nil {
		return zero, false, dispatchErr
	}

	cursor, performErr := op.performGet(ctx, resolver)
	if performErr != nil {
		return zero, false, errors.Join(ErrGetOperationFailed, performErr)
	}

	object, found, mapErr := mapFirstRow(cursor, resolver)

	// The cursor is released on every path; a close failure never displaces
	// the mapping error, it joins the chain.
	if closeErr := cursor.Close(); closeErr != nil {
		mapErr = errors.Join(mapErr, ErrClosingCursorFailed, closeErr)
	}

	if mapErr != nil {
		return zero, false, errors.Join(ErrGetOperationFailed, mapErr)
	}

	return object, found, nil
}

// ObservedTables returns the tables whose changes re-trigger this operation
// when observed: the structured query's table, or the raw query's declared
// observed tables (possibly none).
func (op PreparedGetObject[T]) ObservedTables() []TableNameString {
	switch {
	case op.query != nil:
		return []TableNameString{op.query.Table()}
	case op.rawQuery != nil:
		return op.rawQuery.ObservedTables()
	default:
		return nil
	}
}

func (op PreparedGetObject[T]) performGet(ctx context.Context, resolver GetResolver[T]) (Cursor, error) {
	switch {
	case op.query != nil:
		return resolver.PerformGet(ctx, op.store, *op.query)
	case op.rawQuery != nil:
		return resolver.PerformGetRaw(ctx, op.store, *op.rawQuery)
	default:
		return nil, ErrNoQuerySpecified
	}
}

// resolveGetResolver selects the resolver for one execution: an explicit
// resolver always wins, otherwise the registry entry for T is used. A failed
// lookup is a pure configuration error, the store is never touched.
func resolveGetResolver[T any](explicit GetResolver[T], registry *TypeRegistry) (GetResolver[T], error) {
	if explicit != nil {
		return explicit, nil
	}

	if resolver, ok := GetResolverFor[T](registry); ok {
		return resolver, nil
	}

	var probe T

	return nil, errors.Join(ErrConfiguration, fmt.Errorf("%w: %T", ErrNoGetResolverRegistered, probe))
}

// mapFirstRow maps the cursor's first row, ignoring any rows beyond it.
// The caller owns closing the cursor.
func mapFirstRow[T any](cursor Cursor, resolver GetResolver[T]) (T, bool, error) {
	var zero T

	if !cursor.Next() {
		if iterErr := cursor.Err(); iterErr != nil {
			return zero, false, iterErr
		}

		return zero, false, nil
	}

	object, mapErr := resolver.MapFromCursor(cursor)
	if mapErr != nil {
		return zero, false, mapErr
	}

	return object, true, nil
}

/***** Builders *****/

// GetObject starts building a single-object Get operation against the given
// store. A descriptor must be supplied before any optional override; the
// staged builder types enforce the order.
func GetObject[T any](store RowStore) GetObjectBuilder[T] {
	return GetObjectBuilder[T]{store: store}
}

// GetObjectBuilder is the descriptor-lacking stage of the Get operation builder.
type GetObjectBuilder[T any] struct {
	store RowStore
}

// WithQuery sets a structured Query for the Get operation.
func (b GetObjectBuilder[T]) WithQuery(query Query) CompleteGetObjectBuilder[T] {
	return CompleteGetObjectBuilder[T]{store: b.store, query: &query}
}

// WithRawQuery sets a RawQuery for the Get operation. Use it for joins and
// other constructions a structured Query cannot express.
func (b GetObjectBuilder[T]) WithRawQuery(rawQuery RawQuery) CompleteGetObjectBuilder[T] {
	return CompleteGetObjectBuilder[T]{store: b.store, rawQuery: &rawQuery}
}

// CompleteGetObjectBuilder is the finalizable stage of the Get operation
// builder: the descriptor is set, overrides are optional.
type CompleteGetObjectBuilder[T any] struct {
	store    RowStore
	query    *Query
	rawQuery *RawQuery
	resolver GetResolver[T]
}

// WithGetResolver sets an explicit resolver for the Get operation. It takes
// precedence over any TypeRegistry entry for T.
func (b CompleteGetObjectBuilder[T]) WithGetResolver(resolver GetResolver[T]) CompleteGetObjectBuilder[T] {
	b.resolver = resolver

	return b
}

// Prepare validates the descriptor and returns the immutable operation.
// Validation happens here, before any store access: a nil store, an empty
// table name or an empty raw statement all fail with a configuration error.
func (b CompleteGetObjectBuilder[T]) Prepare() (PreparedGetObject[T], error) {
	var none PreparedGetObject[T]

	if b.store == nil {
		return none, errors.Join(ErrConfiguration, ErrNilRowStore)
	}

	switch {
	case b.query != nil:
		if b.query.Table() == "" {
			return none, errors.Join(ErrConfiguration, ErrEmptyTableName)
		}
	case b.rawQuery != nil:
		if b.rawQuery.Statement() == "" {
			return none, errors.Join(ErrConfiguration, ErrEmptyStatement)
		}
	default:
		return none, errors.Join(ErrConfiguration, ErrNoQuerySpecified)
	}

	return PreparedGetObject[T]{
		store:            b.store,
		query:            b.query,
		rawQuery:         b.rawQuery,
		explicitResolver: b.resolver,
	}, nil
}
