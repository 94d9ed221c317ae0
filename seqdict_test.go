// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import "testing"

func TestSequenceDictionaryInsertNeverStoresZero(t *testing.T) {
	sets := []SetDef{{Name: "REG", Elements: []string{"AUS", "USA"}}}
	d := NewSequenceDictionary[float32](sets)

	d.Insert(KeySequence{"AUS"}, 0)
	if d.Len() != 0 {
		t.Fatalf("Len() = %d after inserting zero value, want 0", d.Len())
	}

	d.Insert(KeySequence{"AUS"}, 1.5)
	if d.Len() != 1 {
		t.Fatalf("Len() = %d after inserting non-zero value, want 1", d.Len())
	}

	d.Insert(KeySequence{"AUS"}, 0)
	if d.Len() != 0 {
		t.Fatalf("Len() = %d after re-inserting zero, want 0 (sparse-storage invariant)", d.Len())
	}
}

func TestExpandedKeysReverseLexOrder(t *testing.T) {
	// Property 4: the first |S0| expanded keys all share the same S1
	// element, because S0 (the first set) varies fastest.
	sets := []SetDef{
		{Name: "COM", Elements: []string{"c1", "c2"}},
		{Name: "REG", Elements: []string{"r1", "r2"}},
	}
	d := NewSequenceDictionary[float32](sets)

	var keys []KeySequence
	for k := range d.ExpandedKeys() {
		keys = append(keys, k)
	}

	if len(keys) != 4 {
		t.Fatalf("len(expandedKeys) = %d, want 4 (= product of set sizes)", len(keys))
	}
	if keys[0][1] != keys[1][1] {
		t.Errorf("first two keys should share their REG component: got %v, %v", keys[0], keys[1])
	}
	if keys[0][0] == keys[1][0] {
		t.Errorf("COM component should have advanced by position 1: got %v, %v", keys[0], keys[1])
	}
}

func TestExpandedKeysLength(t *testing.T) {
	sets := []SetDef{
		{Name: "A", Elements: []string{"1", "2", "3"}},
		{Name: "B", Elements: []string{"x", "y"}},
	}
	d := NewSequenceDictionary[int32](sets)

	count := 0
	for range d.ExpandedKeys() {
		count++
	}
	if want := d.Size(); count != want {
		t.Errorf("expanded key count = %d, want Size() = %d", count, want)
	}
}

func TestGetPartial(t *testing.T) {
	sets := []SetDef{
		{Name: "COM", Elements: []string{"c1", "c2"}},
		{Name: "REG", Elements: []string{"r1", "r2"}},
	}
	d := NewSequenceDictionary[float32](sets)
	d.Insert(KeySequence{"c1", "r2"}, 3.0)

	view, err := d.GetPartial(KeySequence{"c1"})
	if err != nil {
		t.Fatalf("GetPartial(c1) failed: %v", err)
	}
	if got := view.Get(KeySequence{"r2"}); got != 3.0 {
		t.Errorf("view.Get(r2) = %v, want 3.0", got)
	}
	if got := view.Get(KeySequence{"r1"}); got != 0 {
		t.Errorf("view.Get(r1) = %v, want 0 (lazily materialized default)", got)
	}

	if _, err := d.GetPartial(KeySequence{"zz"}); err == nil {
		t.Error("GetPartial(zz) expected KeyNotFoundError, got nil")
	}
}
