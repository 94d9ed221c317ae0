// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"iter"
)

// SetDef is one named, ordered defining set of a HeaderArray dimension.
type SetDef struct {
	Name     string
	Elements []string
}

// Size is the number of elements in the set.
func (s SetDef) Size() int { return len(s.Elements) }

// indexOf returns the position of elem in the set, or -1.
func (s SetDef) indexOf(elem string) int {
	for i, e := range s.Elements {
		if e == elem {
			return i
		}
	}
	return -1
}

// SequenceDictionary is a sparse mapping from a KeySequence (drawn from
// the Cartesian product of sets) to a value V. Only entries whose value
// differs from V's zero value are stored; expanded enumeration
// materializes the rest lazily with the zero value.
type SequenceDictionary[V comparable] struct {
	sets   []SetDef
	order  []KeySequence
	values map[string]V
}

// NewSequenceDictionary creates an empty dictionary over the given
// defining sets.
func NewSequenceDictionary[V comparable](sets []SetDef) *SequenceDictionary[V] {
	return &SequenceDictionary[V]{
		sets:   sets,
		values: make(map[string]V),
	}
}

// Sets returns the defining sets, in order.
func (d *SequenceDictionary[V]) Sets() []SetDef { return d.sets }

// Size is the total logical size: the product of the defining sets'
// sizes, or 0 when there are no defining sets. It may differ from Len,
// the number of stored (non-default) entries.
func (d *SequenceDictionary[V]) Size() int {
	total := 1
	for _, s := range d.sets {
		total *= s.Size()
	}
	if len(d.sets) == 0 {
		return 0
	}
	return total
}

// Len returns the number of stored, non-default entries.
func (d *SequenceDictionary[V]) Len() int { return len(d.order) }

// Insert records key -> v, unless v equals V's zero value, in which case
// nothing is stored and any existing entry for key is removed (the
// sparse-storage invariant: no default is ever stored). Re-inserting an
// existing key with a non-zero value overwrites it in place without
// disturbing insertion order.
func (d *SequenceDictionary[V]) Insert(key KeySequence, v V) {
	var zero V
	k := key.String()
	if v == zero {
		if _, ok := d.values[k]; ok {
			delete(d.values, k)
			for i, existing := range d.order {
				if existing.String() == k {
					d.order = append(d.order[:i], d.order[i+1:]...)
					break
				}
			}
		}
		return
	}
	if _, ok := d.values[k]; !ok {
		d.order = append(d.order, key.Clone())
	}
	d.values[k] = v
}

// Get returns the stored value for key, or V's zero value if absent.
func (d *SequenceDictionary[V]) Get(key KeySequence) V {
	return d.values[key.String()]
}

// Entries iterates the stored (non-default) entries in insertion order.
func (d *SequenceDictionary[V]) Entries() iter.Seq2[KeySequence, V] {
	return func(yield func(KeySequence, V) bool) {
		for _, k := range d.order {
			if !yield(k, d.values[k.String()]) {
				return
			}
		}
	}
}

// ExpandedKeys lazily enumerates every key tuple of the full Cartesian
// product of the defining sets, in reverse-lex order (the last set
// varies slowest, mirroring Fortran column-major storage).
func (d *SequenceDictionary[V]) ExpandedKeys() iter.Seq[KeySequence] {
	return func(yield func(KeySequence) bool) {
		if len(d.sets) == 0 {
			return
		}
		idx := make([]int, len(d.sets))
		for {
			key := make(KeySequence, len(d.sets))
			for i, s := range d.sets {
				key[i] = s.Elements[idx[i]]
			}
			if !yield(key) {
				return
			}

			// Advance the composite counter so that the first set
			// varies fastest and the last set varies slowest.
			pos := 0
			for pos < len(d.sets) {
				idx[pos]++
				if idx[pos] < d.sets[pos].Size() {
					break
				}
				idx[pos] = 0
				pos++
			}
			if pos == len(d.sets) {
				return
			}
		}
	}
}

// LogicalValues lazily enumerates (key, value) pairs over the full
// expanded Cartesian product, materializing missing entries with the
// zero value.
func (d *SequenceDictionary[V]) LogicalValues() iter.Seq2[KeySequence, V] {
	return func(yield func(KeySequence, V) bool) {
		for k := range d.ExpandedKeys() {
			if !yield(k, d.Get(k)) {
				return
			}
		}
	}
}

// SubView is the result of a partial-key lookup: a window over the
// suffix Cartesian product of the sets following the matched prefix.
type SubView[V comparable] struct {
	parent *SequenceDictionary[V]
	prefix KeySequence
	sets   []SetDef
}

// GetPartial returns a SubView over every entry whose first len(prefix)
// components match prefix. It fails with a *KeyNotFoundError if prefix
// is not itself a valid partial product (any component not a member of
// its corresponding set, or a prefix longer than the set count).
func (d *SequenceDictionary[V]) GetPartial(prefix KeySequence) (*SubView[V], error) {
	if len(prefix) > len(d.sets) {
		return nil, &KeyNotFoundError{Key: prefix}
	}
	for i, p := range prefix {
		if d.sets[i].indexOf(p) < 0 {
			return nil, &KeyNotFoundError{Key: prefix}
		}
	}
	return &SubView[V]{parent: d, prefix: prefix.Clone(), sets: d.sets[len(prefix):]}, nil
}

// Get returns the value at suffix (relative to the SubView's prefix),
// materializing the zero value if the full key is unset.
func (v *SubView[V]) Get(suffix KeySequence) V {
	full := append(v.prefix.Clone(), suffix...)
	return v.parent.Get(full)
}

// ExpandedKeys enumerates the suffix Cartesian product in reverse-lex
// order, same convention as SequenceDictionary.ExpandedKeys.
func (v *SubView[V]) ExpandedKeys() iter.Seq[KeySequence] {
	sub := &SequenceDictionary[V]{sets: v.sets}
	return sub.ExpandedKeys()
}
