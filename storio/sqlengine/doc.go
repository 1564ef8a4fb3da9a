// Package sqlengine implements the storio row store on top of SQL databases.
//
// The Store builds structured queries with goqu (dialect-configurable, e.g.
// postgres or sqlite3), executes them through a database adapter (pgx.Pool,
// sql.DB, or sqlx.DB), and owns the in-process ChangeBus that drives live
// observation: every write published through the store fans out to the
// subscriptions observing the affected tables.
//
// Common usage pattern:
//
//	registry := storio.NewTypeRegistry()
//	storio.RegisterGetResolver(registry, userResolver)
//
//	store, err := sqlengine.NewStoreFromSQLDB(db,
//		sqlengine.WithDialect("sqlite3"),
//		sqlengine.WithTypeRegistry(registry),
//		sqlengine.WithLogger(logger),
//	)
package sqlengine
