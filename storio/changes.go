package storio

import (
	"slices"
)

/***** Change *****/

// Change describes one change notification: the set of tables a write
// affected. Subscribers only receive changes whose affected tables intersect
// the tables they observe.
type Change struct {
	affectedTables []TableNameString
}

// NewChange creates a Change for the given affected tables.
//
// It sanitizes the input:
//   - removing empty table names ("")
//   - sorting the table names
//   - removing duplicate table names
func NewChange(table TableNameString, tables ...TableNameString) Change {
	return Change{affectedTables: sanitizeTableNames(table, tables...)}
}

func (c Change) AffectedTables() []TableNameString {
	return c.affectedTables
}

// Affects reports whether the change's affected tables intersect the given tables.
func (c Change) Affects(tables []TableNameString) bool {
	for _, table := range tables {
		if slices.Contains(c.affectedTables, table) {
			return true
		}
	}

	return false
}

/***** Notifier contracts *****/

// ChangeSubscription is one live subscription to table changes. The Changes
// channel delivers notifications in publication order; Unsubscribe is
// idempotent and releases the subscription's resources exactly once, after
// which the channel is closed.
type ChangeSubscription interface {
	Changes() <-chan Change
	Unsubscribe()
}

// ChangeNotifier provides filtered streams of table-change notifications.
// Implementations deliver only changes whose affected tables intersect the
// subscribed tables.
type ChangeNotifier interface {
	ObserveChanges(tables []TableNameString) (ChangeSubscription, error)
}
