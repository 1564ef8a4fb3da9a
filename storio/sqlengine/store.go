package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/MrZLO/storio/storio"
	"github.com/MrZLO/storio/storio/sqlengine/internal/adapters"
)

const (
	defaultDialect = "postgres"

	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database statement execution failed"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgChangePublished        = "change published"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "store operation: "

	logAttrError          = "error"
	logAttrQuery          = "query"
	logAttrTable          = "table"
	logAttrAffectedTables = "affected_tables"
	logAttrDurationMS     = "duration_ms"
	logAttrRowsAffected   = "rows_affected"

	logActionGet  = "get"
	logActionRaw  = "raw_get"
	logActionExec = "exec"

	metricGetQueryDuration = "storio_get_query_duration_seconds"
	metricExecDuration     = "storio_exec_duration_seconds"
	metricStoreErrors      = "storio_store_errors_total"
	metricChangesPublished = "storio_changes_published_total"

	spanGetCursor = "storio.get_cursor"
	spanRawCursor = "storio.raw_cursor"
	spanExec      = "storio.exec"

	spanAttrOperation = "operation"
	spanAttrTable     = "table"
	spanAttrDialect   = "dialect"
	spanAttrErrorType = "error_type"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery   = "build_query"
	errorTypeQuery        = "query"
	errorTypeExec         = "exec"
	errorTypeRowsAffected = "rows_affected"
)

type sqlQueryString = string

// Store implements storio.RowStore on top of a SQL database. It builds
// structured queries with goqu, executes them through a database adapter,
// and owns the ChangeBus driving live observation.
type Store struct {
	db               adapters.DBAdapter
	dialect          string
	registry         *storio.TypeRegistry
	bus              *ChangeBus
	changeBufferSize int
	logger           storio.Logger
	contextualLogger storio.ContextualLogger
	metricsCollector storio.MetricsCollector
	tracingCollector storio.TracingCollector
}

var _ storio.RowStore = (*Store)(nil)

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, storio.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, storio.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, storio.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	store := &Store{
		db:               db,
		dialect:          defaultDialect,
		registry:         storio.NewTypeRegistry(),
		changeBufferSize: defaultChangeBufferSize,
	}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	bus, busErr := NewChangeBus(store.changeBufferSize)
	if busErr != nil {
		return nil, busErr
	}

	store.bus = bus

	return store, nil
}

// Registry returns the read-only registry of default resolvers per result type.
func (s *Store) Registry() *storio.TypeRegistry {
	return s.registry
}

// Bus returns the store's change bus.
func (s *Store) Bus() *ChangeBus {
	return s.bus
}

// ObserveChanges subscribes to changes affecting any of the given tables.
func (s *Store) ObserveChanges(tables []storio.TableNameString) (storio.ChangeSubscription, error) {
	return s.bus.ObserveChanges(tables)
}

// GetCursor executes the structured query and returns a cursor over its rows.
// The caller owns the cursor and must close it.
func (s *Store) GetCursor(ctx context.Context, query storio.Query) (storio.Cursor, error) {
	ctx, span := s.startSpan(ctx, spanGetCursor, map[string]string{
		spanAttrOperation: logActionGet,
		spanAttrTable:     query.Table(),
		spanAttrDialect:   s.dialect,
	})

	sqlQuery, buildQueryErr := s.buildSelectQuery(query)
	if buildQueryErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr, logAttrTable, query.Table())
		s.recordErrorMetricsContext(ctx, logActionGet, errorTypeBuildQuery)
		s.finishSpan(span, statusError)

		return nil, errors.Join(storio.ErrBuildingQueryFailed, buildQueryErr)
	}

	rows, duration, queryErr := s.executeQuery(ctx, sqlQuery, logActionGet)
	if queryErr != nil {
		s.recordErrorMetricsContext(ctx, logActionGet, errorTypeQuery)
		s.finishSpan(span, statusError)

		return nil, queryErr
	}

	s.recordDurationMetricsContext(ctx, metricGetQueryDuration, duration, logActionGet, statusSuccess)
	s.finishSpan(span, statusSuccess)

	return rows, nil
}

// RawCursor executes the raw query and returns a cursor over its rows.
// The statement is passed to the database as-is, with the args in the
// placeholder syntax of the underlying driver. The caller owns the cursor
// and must close it.
func (s *Store) RawCursor(ctx context.Context, rawQuery storio.RawQuery) (storio.Cursor, error) {
	ctx, span := s.startSpan(ctx, spanRawCursor, map[string]string{
		spanAttrOperation: logActionRaw,
		spanAttrDialect:   s.dialect,
	})

	rows, duration, queryErr := s.executeQuery(ctx, rawQuery.Statement(), logActionRaw, rawQuery.Args()...)
	if queryErr != nil {
		s.recordErrorMetricsContext(ctx, logActionRaw, errorTypeQuery)
		s.finishSpan(span, statusError)

		return nil, queryErr
	}

	s.recordDurationMetricsContext(ctx, metricGetQueryDuration, duration, logActionRaw, statusSuccess)
	s.finishSpan(span, statusSuccess)

	return rows, nil
}

// Exec executes a write statement and returns the number of affected rows.
// It does not publish a change notification by itself; pair it with
// NotifyChange so observers of the written tables re-execute. The write
// operation pipeline (put/delete builders and resolvers) lives above this
// low-level method.
func (s *Store) Exec(ctx context.Context, statement string, args ...any) (int64, error) {
	ctx, span := s.startSpan(ctx, spanExec, map[string]string{
		spanAttrOperation: logActionExec,
		spanAttrDialect:   s.dialect,
	})

	start := time.Now()
	result, execErr := s.db.Exec(ctx, statement, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, statement, logActionExec, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
		s.recordErrorMetricsContext(ctx, logActionExec, errorTypeExec)
		s.finishSpan(span, statusError)

		return 0, errors.Join(storio.ErrExecutingStatementFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		s.recordErrorMetricsContext(ctx, logActionExec, errorTypeRowsAffected)
		s.finishSpan(span, statusError)

		return 0, errors.Join(storio.ErrExecutingStatementFailed, rowsAffectedErr)
	}

	s.recordDurationMetricsContext(ctx, metricExecDuration, duration, logActionExec, statusSuccess)
	s.finishSpan(span, statusSuccess)
	s.logOperation(ctx, logActionExec, logAttrRowsAffected, rowsAffected, logAttrDurationMS, s.toMilliseconds(duration))

	return rowsAffected, nil
}

// NotifyChange publishes a change to every subscription observing one of its
// affected tables.
func (s *Store) NotifyChange(ctx context.Context, change storio.Change) {
	s.bus.Publish(change)

	s.logOperation(ctx, logMsgChangePublished, logAttrAffectedTables, change.AffectedTables())
	s.incrementCounterContext(ctx, metricChangesPublished, map[string]string{spanAttrOperation: "notify"})
}

// executeQuery executes the SQL query and returns rows with timing information.
func (s *Store) executeQuery(ctx context.Context, sqlQuery string, action string, args ...any) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(storio.ErrExecutingQueryFailed, queryErr)
	}

	return rows, duration, nil
}

func (s *Store) buildSelectQuery(query storio.Query) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(s.dialect).From(query.Table())

	if columns := query.Columns(); len(columns) > 0 {
		selectCols := make([]any, len(columns))
		for i, column := range columns {
			selectCols[i] = column
		}

		selectStmt = selectStmt.Select(selectCols...)
	}

	if query.WhereClause() != "" {
		selectStmt = selectStmt.Where(goqu.L(query.WhereClause(), query.WhereArgs()...))
	}

	if query.OrderBy() != "" {
		if query.OrderDescending() {
			selectStmt = selectStmt.Order(goqu.I(query.OrderBy()).Desc())
		} else {
			selectStmt = selectStmt.Order(goqu.I(query.OrderBy()).Asc())
		}
	}

	if query.Limit() > 0 {
		selectStmt = selectStmt.Limit(query.Limit())
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", toSQLErr
	}

	return sqlQuery, nil
}
