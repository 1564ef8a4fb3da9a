package storio

import (
	"errors"
)

// ErrConfiguration classifies failures detected before any store access:
// invalid descriptors at build time and unresolvable resolvers at dispatch
// time. It is always joined with a more specific sentinel below.
var ErrConfiguration = errors.New("storio: configuration error")

// ErrGetOperationFailed is the uniform wrapper for any failure during a Get
// execution attempt: store execution, row mapping, or cursor release. The
// original cause is always joined and reachable via errors.Is / errors.As.
var ErrGetOperationFailed = errors.New("storio: get operation failed")

var ErrNilRowStore = errors.New("nil row store supplied")
var ErrNoQuerySpecified = errors.New("no query or raw query specified")
var ErrEmptyTableName = errors.New("empty table name supplied")
var ErrEmptyStatement = errors.New("empty raw query statement supplied")
var ErrNoGetResolverRegistered = errors.New("no get resolver registered for type, store was not touched by this operation")
var ErrClosingCursorFailed = errors.New("closing cursor failed")
var ErrInvalidJSONDocument = errors.New("row document is not valid json")

// Sentinels shared with store engine implementations.
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyDialect = errors.New("empty sql dialect supplied")
var ErrNilTypeRegistry = errors.New("nil type registry supplied")
var ErrNoObservedTables = errors.New("no observed tables supplied")
var ErrInvalidChangeBufferSize = errors.New("change buffer size must be positive")
var ErrBuildingQueryFailed = errors.New("building select query failed")
var ErrExecutingQueryFailed = errors.New("executing query failed")
var ErrExecutingStatementFailed = errors.New("executing statement failed")
