// Package idtable provides an id-keyed lookup table with deterministic
// iteration order, used by the allocators to map an allocation id to its
// backing block.
//
// The teacher's hashtable package builds a concurrent, lock-striped
// bucket table because it backs kernel-wide structures accessed from many
// CPUs. This simulator is single-threaded (spec §5: "no real
// concurrency"), so the locking, atomics, and unsafe pointer chasing in
// that package have no job here — what's worth keeping is the shape of
// its exported surface (Get/Set/Del keyed by id) and, since command
// output must be reproducible (SPEC_FULL §4.9), stable iteration by key.
package idtable

import "sort"

// Table maps an int id to a value of type V.
type Table[V any] struct {
	m map[int]V
}

// New returns an empty Table.
func New[V any]() *Table[V] {
	return &Table[V]{m: make(map[int]V)}
}

// Set records value under id, overwriting any previous entry.
func (t *Table[V]) Set(id int, value V) {
	t.m[id] = value
}

// Get returns the value stored under id, if any.
func (t *Table[V]) Get(id int) (V, bool) {
	v, ok := t.m[id]
	return v, ok
}

// Del removes id from the table. Deleting an absent id is a no-op.
func (t *Table[V]) Del(id int) {
	delete(t.m, id)
}

// Len returns the number of entries in the table.
func (t *Table[V]) Len() int {
	return len(t.m)
}

// Ids returns every key currently stored, sorted ascending.
func (t *Table[V]) Ids() []int {
	ids := make([]int, 0, len(t.m))
	for id := range t.m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Each calls f for every entry in ascending id order.
func (t *Table[V]) Each(f func(id int, value V)) {
	for _, id := range t.Ids() {
		f(id, t.m[id])
	}
}
