// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

func writeAndReadBack(t *testing.T, arr *HeaderArray, opts *WriterOptions) *HeaderArray {
	t.Helper()
	var buf bytes.Buffer
	if err := NewWriter(&buf, opts).Write(arr); err != nil {
		t.Fatalf("Write(%s) failed: %v", arr.Header, err)
	}
	got, err := NewReader(&buf, nil).Next()
	if err != nil {
		t.Fatalf("Next() after writing %s failed: %v", arr.Header, err)
	}
	return got
}

// TestStringArrayRoundTrip is spec scenario S1.
func TestStringArrayRoundTrip(t *testing.T) {
	sets := []SetDef{{Name: "REG", Elements: []string{"AUS", "USA", "CHN"}}}
	dict := NewSequenceDictionary[string](sets)
	dict.Insert(KeySequence{"AUS"}, "Oz")
	dict.Insert(KeySequence{"USA"}, "States")
	dict.Insert(KeySequence{"CHN"}, "China")

	arr := &HeaderArray{
		Header:      "REG1",
		Description: "region labels",
		Type:        TypeCharacter,
		Dimensions:  dimsFromSets(sets),
		Sets:        sets,
		Strings:     dict,
	}

	got := writeAndReadBack(t, arr, nil)
	if got.Strings.Get(KeySequence{"AUS"}) != "Oz" {
		t.Errorf(`arr["REG1"]["AUS"] = %q, want "Oz"`, got.Strings.Get(KeySequence{"AUS"}))
	}
	if got.Strings.Get(KeySequence{"CHN"}) != "China" {
		t.Errorf(`arr["REG1"]["CHN"] = %q, want "China"`, got.Strings.Get(KeySequence{"CHN"}))
	}
	if got.Dimensions[0] != 3 {
		t.Errorf("Dimensions[0] = %d, want 3", got.Dimensions[0])
	}
}

// TestDenseRealRoundTrip is spec scenario S2: column-major values zip
// onto reverse-lex expanded keys so the first set (COM) varies fastest.
func TestDenseRealRoundTrip(t *testing.T) {
	sets := []SetDef{
		{Name: "COM", Elements: []string{"c1", "c2"}},
		{Name: "REG", Elements: []string{"r1", "r2"}},
	}
	dict := NewSequenceDictionary[float32](sets)
	values := []float32{1.0, 2.0, 3.0, 4.0}
	i := 0
	for k := range dict.ExpandedKeys() {
		dict.Insert(k, values[i])
		i++
	}

	arr := &HeaderArray{
		Header:      "DEMD",
		Description: "demand",
		Type:        TypeReal,
		Dimensions:  dimsFromSets(sets),
		Sets:        sets,
		Reals:       dict,
	}

	got := writeAndReadBack(t, arr, &WriterOptions{SparseThreshold: math.SmallestNonzeroFloat64}) // force dense
	cases := []struct {
		key  KeySequence
		want float32
	}{
		{KeySequence{"c1", "r1"}, 1.0},
		{KeySequence{"c2", "r1"}, 2.0},
		{KeySequence{"c1", "r2"}, 3.0},
		{KeySequence{"c2", "r2"}, 4.0},
	}
	for _, c := range cases {
		if got.Reals.Get(c.key) != c.want {
			t.Errorf("arr%v = %v, want %v", c.key, got.Reals.Get(c.key), c.want)
		}
	}
}

// TestSparseRealRoundTrip is spec scenario S3.
func TestSparseRealRoundTrip(t *testing.T) {
	sets := []SetDef{{Name: "N", Elements: make([]string, 100)}}
	for i := range sets[0].Elements {
		sets[0].Elements[i] = string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	// Labels are unique, so each of the 100 positions has its own key.
	dict := NewSequenceDictionary[float32](sets)

	var keys []KeySequence
	for k := range dict.ExpandedKeys() {
		keys = append(keys, k)
	}
	dict.Insert(keys[7], 1.5)
	dict.Insert(keys[42], 2.5)

	arr := &HeaderArray{
		Header:      "SPRS",
		Description: "sparse test",
		Type:        TypeReal,
		Dimensions:  dimsFromSets(sets),
		Sets:        sets,
		Reals:       dict,
	}

	got := writeAndReadBack(t, arr, &WriterOptions{SparseThreshold: 1.0}) // force sparse
	if got.Reals.Get(keys[7]) != 1.5 {
		t.Errorf("index 7 = %v, want 1.5", got.Reals.Get(keys[7]))
	}
	if got.Reals.Get(keys[42]) != 2.5 {
		t.Errorf("index 42 = %v, want 2.5", got.Reals.Get(keys[42]))
	}
	if got.Reals.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (only non-zero entries stored)", got.Reals.Len())
	}
}

// TestDensityIndependence is property 2: dense and sparse encodings of
// the same logical array round-trip to identical values.
func TestDensityIndependence(t *testing.T) {
	sets := []SetDef{{Name: "X", Elements: []string{"a", "b", "c"}}}
	dict := NewSequenceDictionary[float32](sets)
	dict.Insert(KeySequence{"b"}, 9.0)

	arr := &HeaderArray{
		Header: "DENS", Type: TypeReal, Dimensions: dimsFromSets(sets), Sets: sets, Reals: dict,
	}

	dense := writeAndReadBack(t, arr, &WriterOptions{SparseThreshold: math.SmallestNonzeroFloat64})
	sparse := writeAndReadBack(t, arr, &WriterOptions{SparseThreshold: 1.0})

	for _, k := range []string{"a", "b", "c"} {
		key := KeySequence{k}
		if dense.Reals.Get(key) != sparse.Reals.Get(key) {
			t.Errorf("dense/sparse disagree at %v: %v != %v", key, dense.Reals.Get(key), sparse.Reals.Get(key))
		}
	}
}

func TestRealListRoundTrip(t *testing.T) {
	arr := &HeaderArray{
		Header:      "RLST",
		Description: "flat real list",
		Type:        TypeRealList,
		Dimensions:  [numDimensions]int32{4, 1, 1, 1, 1, 1, 1},
		RealList:    []float32{1, 2, 3, 4},
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf, nil).Write(arr); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := NewReader(&buf, nil).Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(got.RealList) != 4 {
		t.Fatalf("len(RealList) = %d, want 4", len(got.RealList))
	}
	for i, v := range []float32{1, 2, 3, 4} {
		if got.RealList[i] != v {
			t.Errorf("RealList[%d] = %v, want %v", i, got.RealList[i], v)
		}
	}
}

// TestRowMajorIndex pins down the row-major index convention spec §4.5
// requires for sparse RE linear indices: the last set varies fastest,
// the opposite of ExpandedKeys' column-major order.
func TestRowMajorIndex(t *testing.T) {
	sets := []SetDef{
		{Name: "COM", Elements: []string{"c1", "c2"}},
		{Name: "REG", Elements: []string{"r1", "r2"}},
	}
	cases := []struct {
		key  KeySequence
		want int
	}{
		{KeySequence{"c1", "r1"}, 0},
		{KeySequence{"c1", "r2"}, 1},
		{KeySequence{"c2", "r1"}, 2},
		{KeySequence{"c2", "r2"}, 3},
	}
	for _, c := range cases {
		got, err := rowMajorIndex(sets, c.key)
		if err != nil {
			t.Fatalf("rowMajorIndex(%v) failed: %v", c.key, err)
		}
		if got != c.want {
			t.Errorf("rowMajorIndex(%v) = %d, want %d", c.key, got, c.want)
		}
		back, err := rowMajorKey(sets, c.want)
		if err != nil {
			t.Fatalf("rowMajorKey(%d) failed: %v", c.want, err)
		}
		if back.String() != c.key.String() {
			t.Errorf("rowMajorKey(%d) = %v, want %v", c.want, back, c.key)
		}
	}
}

// TestSparseRealMultiSetRoundTrip covers a 2-set sparse RE array, where
// row-major and column-major orderings diverge. It both round-trips
// through Reader/Writer and decodes the raw on-wire indices directly,
// since a shared (wrong) convention on both sides would otherwise
// round-trip cleanly without ever exercising the bug.
func TestSparseRealMultiSetRoundTrip(t *testing.T) {
	sets := []SetDef{
		{Name: "COM", Elements: []string{"c1", "c2"}},
		{Name: "REG", Elements: []string{"r1", "r2", "r3"}},
	}
	dict := NewSequenceDictionary[float32](sets)
	dict.Insert(KeySequence{"c1", "r2"}, 7.5)
	dict.Insert(KeySequence{"c2", "r1"}, 3.5)

	arr := &HeaderArray{
		Header: "MSET", Type: TypeReal, Dimensions: dimsFromSets(sets), Sets: sets, Reals: dict,
	}

	got := writeAndReadBack(t, arr, &WriterOptions{SparseThreshold: 1.0}) // force sparse
	if v := got.Reals.Get(KeySequence{"c1", "r2"}); v != 7.5 {
		t.Errorf(`arr["c1"]["r2"] = %v, want 7.5`, v)
	}
	if v := got.Reals.Get(KeySequence{"c2", "r1"}); v != 3.5 {
		t.Errorf(`arr["c2"]["r1"] = %v, want 3.5`, v)
	}
	if v := got.Reals.Get(KeySequence{"c1", "r1"}); v != 0 {
		t.Errorf(`arr["c1"]["r1"] = %v, want 0`, v)
	}

	var buf bytes.Buffer
	if err := NewWriter(&buf, &WriterOptions{SparseThreshold: 1.0}).Write(arr); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rr := newRecordReader(&buf)
	if _, err := rr.readRecord(); err != nil { // header
		t.Fatalf("reading header record: %v", err)
	}
	if _, err := rr.readPaddedRecord(); err != nil { // description
		t.Fatalf("reading description record: %v", err)
	}
	if _, err := rr.readRecord(); err != nil { // set-labels header
		t.Fatalf("reading set-labels header record: %v", err)
	}
	for range sets {
		if _, err := rr.readRecord(); err != nil { // per-set labels
			t.Fatalf("reading set label record: %v", err)
		}
	}
	if _, err := rr.readRecord(); err != nil { // extents
		t.Fatalf("reading extents record: %v", err)
	}
	if _, err := rr.readRecord(); err != nil { // value-count
		t.Fatalf("reading value-count record: %v", err)
	}
	dataPayload, err := rr.readRecord() // first (only) data record
	if err != nil {
		t.Fatalf("reading sparse data record: %v", err)
	}

	k := int(int32(binary.LittleEndian.Uint32(dataPayload[8:12])))
	onWire := make(map[int]float32, k)
	for i := 0; i < k; i++ {
		idx := int32(binary.LittleEndian.Uint32(dataPayload[12+i*4 : 16+i*4]))
		bits := binary.LittleEndian.Uint32(dataPayload[12+k*4+i*4 : 16+k*4+i*4])
		onWire[int(idx)] = math.Float32frombits(bits)
	}
	// Row-major over COM(2)xREG(3): ("c1","r2") sits at 0-based position
	// 1 (1-based index 2); ("c2","r1") sits at 0-based position 3
	// (1-based index 4). The column-major (ExpandedKeys) positions for
	// the same keys would be 2 and 1 respectively — transposed.
	if v, ok := onWire[2]; !ok || v != 7.5 {
		t.Errorf(`on-wire row-major index 2 = (%v, present=%v), want (7.5, true) for ["c1"]["r2"]`, v, ok)
	}
	if v, ok := onWire[4]; !ok || v != 3.5 {
		t.Errorf(`on-wire row-major index 4 = (%v, present=%v), want (3.5, true) for ["c2"]["r1"]`, v, ok)
	}
}

func TestReaderEOFAtArrayBoundary(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewReader(&buf, nil).Next()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Next() on empty stream = %v, want io.EOF", err)
	}
}
