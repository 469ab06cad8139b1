package model

import (
	"iter"
	"maps"
	"slices"
)

// Map is a read-only name-keyed collection. It is built once from a plain map
// at assembly time and never changes afterwards, so it can be shared between
// goroutines without locking.
type Map[V any] struct {
	m map[string]V
}

// NewMap copies m into a Map.
func NewMap[V any](m map[string]V) Map[V] {
	return Map[V]{m: maps.Clone(m)}
}

// Get returns the value stored under name.
func (fm Map[V]) Get(name string) (V, bool) {
	v, ok := fm.m[name]
	return v, ok
}

// Has reports whether name is present.
func (fm Map[V]) Has(name string) bool {
	_, ok := fm.m[name]
	return ok
}

func (fm Map[V]) Len() int {
	return len(fm.m)
}

// Names returns the keys in sorted order.
func (fm Map[V]) Names() []string {
	return slices.Sorted(maps.Keys(fm.m))
}

// All iterates entries in name order.
func (fm Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, name := range fm.Names() {
			if !yield(name, fm.m[name]) {
				return
			}
		}
	}
}

// Clone returns a mutable copy of the underlying entries.
func (fm Map[V]) Clone() map[string]V {
	out := maps.Clone(fm.m)
	if out == nil {
		out = map[string]V{}
	}
	return out
}
