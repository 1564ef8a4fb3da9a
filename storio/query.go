package storio

import (
	"slices"
)

type TableNameString = string

/***** Query *****/

// Query is an immutable structured query descriptor: a table plus optional
// column selection, filtering, ordering and a row limit. The filtering and
// ordering fields are opaque to the Get operation itself; they are only
// interpreted by the store engine when it builds the actual SQL.
type Query struct {
	table     TableNameString
	columns   []string
	where     string
	whereArgs []any
	orderBy   string
	orderDesc bool
	limit     uint
}

func (q Query) Table() TableNameString {
	return q.table
}

func (q Query) Columns() []string {
	return q.columns
}

func (q Query) WhereClause() string {
	return q.where
}

func (q Query) WhereArgs() []any {
	return q.whereArgs
}

func (q Query) OrderBy() string {
	return q.orderBy
}

func (q Query) OrderDescending() bool {
	return q.orderDesc
}

func (q Query) Limit() uint {
	return q.limit
}

/***** QueryBuilder *****/

// QueryBuilder builds a structured Query descriptor. The table must be
// supplied before any of the optional clauses; the staged interfaces make it
// impossible to finalize a Query without one.
type QueryBuilder interface {
	// Table sets the table this query selects from.
	Table(table TableNameString) CompleteQueryBuilder
}

type CompleteQueryBuilder interface {
	// Columns restricts the selected columns. Without it the engine selects
	// all columns of the table.
	//
	// It sanitizes the input:
	//	- removing empty column names ("")
	Columns(column string, columns ...string) CompleteQueryBuilder

	// Where sets the filter clause with '?' placeholders for args.
	Where(clause string, args ...any) CompleteQueryBuilder

	// OrderBy orders the result ascending by the given column.
	OrderBy(column string) CompleteQueryBuilder

	// OrderByDesc orders the result descending by the given column.
	OrderByDesc(column string) CompleteQueryBuilder

	// Limit caps the number of rows the store returns. Zero means no limit.
	Limit(limit uint) CompleteQueryBuilder

	// Finalize returns the immutable Query.
	Finalize() Query
}

// queryBuilder implements all the interfaces of QueryBuilder.
type queryBuilder struct {
	query Query
}

// BuildQuery creates a QueryBuilder which must eventually be finalized with Finalize().
func BuildQuery() QueryBuilder {
	return queryBuilder{}
}

// Table sets the table this query selects from.
func (qb queryBuilder) Table(table TableNameString) CompleteQueryBuilder {
	qb.query.table = table

	return qb
}

// Columns restricts the selected columns.
//
// It sanitizes the input:
//   - removing empty column names ("")
func (qb queryBuilder) Columns(column string, columns ...string) CompleteQueryBuilder {
	allColumns := append([]string{column}, columns...)
	allColumns = slices.DeleteFunc(
		allColumns,
		func(c string) bool {
			return c == ""
		})
	allColumns = slices.Clip(allColumns)

	qb.query.columns = append(qb.query.columns, allColumns...)

	return qb
}

// Where sets the filter clause with '?' placeholders for args.
func (qb queryBuilder) Where(clause string, args ...any) CompleteQueryBuilder {
	qb.query.where = clause
	qb.query.whereArgs = args

	return qb
}

// OrderBy orders the result ascending by the given column.
func (qb queryBuilder) OrderBy(column string) CompleteQueryBuilder {
	qb.query.orderBy = column
	qb.query.orderDesc = false

	return qb
}

// OrderByDesc orders the result descending by the given column.
func (qb queryBuilder) OrderByDesc(column string) CompleteQueryBuilder {
	qb.query.orderBy = column
	qb.query.orderDesc = true

	return qb
}

// Limit caps the number of rows the store returns. Zero means no limit.
func (qb queryBuilder) Limit(limit uint) CompleteQueryBuilder {
	qb.query.limit = limit

	return qb
}

// Finalize returns the immutable Query.
func (qb queryBuilder) Finalize() Query {
	return qb.query
}
