// Package storio provides the core abstractions for a typed query/result
// layer above a relational row store.
//
// Callers describe what they want with an immutable Query (structured) or
// RawQuery (arbitrary statement) descriptor, and a GetResolver turns the
// store's cursor rows into typed objects. Resolvers are either supplied
// explicitly per operation or registered once per result type in a
// TypeRegistry at store configuration time.
//
// Key types:
//   - Query / RawQuery: immutable query descriptors, built via staged builders
//   - GetResolver: execution + row-mapping strategy pair
//   - TypeRegistry: default resolver per result type
//   - PreparedGetObject: a prepared single-object Get operation
//
// Common usage pattern:
//
//	query := storio.BuildQuery().
//		Table("users").
//		Where("email = ?", email).
//		Finalize()
//
//	operation, err := storio.GetObject[User](store).
//		WithQuery(query).
//		Prepare()
//	if err != nil {
//		// handle error
//	}
//
//	user, found, err := operation.ExecuteBlocking(ctx)
//
// A prepared operation can also be observed: Observe returns a hot
// subscription that replays the first result immediately and re-executes the
// query whenever one of the observed tables changes. See PreparedGetObject.Observe.
package storio
