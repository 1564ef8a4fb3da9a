package storio

import (
	"reflect"
)

// TypeRegistry maps a result type to its default GetResolver. It is
// populated once at store configuration time and must not be mutated
// afterwards; unsynchronized concurrent reads are safe under that contract.
type TypeRegistry struct {
	resolvers map[reflect.Type]any
}

// NewTypeRegistry creates an empty TypeRegistry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{resolvers: make(map[reflect.Type]any)}
}

// RegisterGetResolver registers the default GetResolver for the result type T,
// replacing a previous registration for the same type. Only call this while
// configuring the store, before any operation uses the registry.
func RegisterGetResolver[T any](registry *TypeRegistry, resolver GetResolver[T]) {
	registry.resolvers[typeKey[T]()] = resolver
}

// GetResolverFor looks up the default GetResolver registered for T.
func GetResolverFor[T any](registry *TypeRegistry) (GetResolver[T], bool) {
	if registry == nil {
		return nil, false
	}

	entry, ok := registry.resolvers[typeKey[T]()]
	if !ok {
		return nil, false
	}

	resolver, ok := entry.(GetResolver[T])

	return resolver, ok
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
