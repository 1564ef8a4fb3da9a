package storio

import (
	"slices"
)

/***** RawQuery *****/

// RawQuery is an immutable raw query descriptor: an arbitrary SQL statement
// with positional args, plus the set of tables the statement reads from.
//
// The observed tables are used only to filter change notifications for
// Observe; they are never parsed out of the statement. A RawQuery with no
// observed tables is valid, its observation stream is effectively single-shot.
type RawQuery struct {
	statement      string
	args           []any
	observedTables []TableNameString
}

func (rq RawQuery) Statement() string {
	return rq.statement
}

func (rq RawQuery) Args() []any {
	return rq.args
}

func (rq RawQuery) ObservedTables() []TableNameString {
	return rq.observedTables
}

/***** RawQueryBuilder *****/

// RawQueryBuilder builds a RawQuery descriptor. The statement must be
// supplied before the optional observed tables.
type RawQueryBuilder interface {
	// Statement sets the SQL statement with '?' placeholders for args.
	Statement(statement string, args ...any) CompleteRawQueryBuilder
}

type CompleteRawQueryBuilder interface {
	// ObservingTables declares the tables whose changes should re-trigger
	// this query when it is observed.
	//
	// It sanitizes the input:
	//	- removing empty table names ("")
	//	- sorting the table names
	//	- removing duplicate table names
	ObservingTables(table TableNameString, tables ...TableNameString) CompleteRawQueryBuilder

	// Finalize returns the immutable RawQuery.
	Finalize() RawQuery
}

// rawQueryBuilder implements all the interfaces of RawQueryBuilder.
type rawQueryBuilder struct {
	rawQuery RawQuery
}

// BuildRawQuery creates a RawQueryBuilder which must eventually be finalized with Finalize().
func BuildRawQuery() RawQueryBuilder {
	return rawQueryBuilder{}
}

// Statement sets the SQL statement with '?' placeholders for args.
func (rb rawQueryBuilder) Statement(statement string, args ...any) CompleteRawQueryBuilder {
	rb.rawQuery.statement = statement
	rb.rawQuery.args = args

	return rb
}

// ObservingTables declares the tables whose changes should re-trigger this query when it is observed.
//
// It sanitizes the input:
//   - removing empty table names ("")
//   - sorting the table names
//   - removing duplicate table names
func (rb rawQueryBuilder) ObservingTables(table TableNameString, tables ...TableNameString) CompleteRawQueryBuilder {
	rb.rawQuery.observedTables = append(
		rb.rawQuery.observedTables,
		sanitizeTableNames(table, tables...)...,
	)

	return rb
}

// Finalize returns the immutable RawQuery.
func (rb rawQueryBuilder) Finalize() RawQuery {
	return rb.rawQuery
}

func sanitizeTableNames(table TableNameString, tables ...TableNameString) []TableNameString {
	allTables := append([]TableNameString{table}, tables...)
	allTables = slices.DeleteFunc(
		allTables,
		func(t TableNameString) bool {
			return t == ""
		})
	slices.Sort(allTables)
	allTables = slices.Compact(allTables)
	allTables = slices.Clip(allTables)

	return allTables
}
