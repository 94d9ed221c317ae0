// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"fmt"
	"strconv"
	"strings"
)

// ArrayType is the two-character type tag of a header array.
type ArrayType string

// The array type tags understood by the codec. RE and 1C are the hot
// paths; 2I and 2R are carried through but never produced by the
// solution assembler.
const (
	TypeReal      ArrayType = "RE" // real, elementwise (dense or sparse)
	TypeRealList  ArrayType = "RL" // real, flat list, no sets
	TypeCharacter ArrayType = "1C" // string array
	TypeInteger   ArrayType = "2I" // integer array
	TypeRealNoSet ArrayType = "2R" // real, no sets
)

// numDimensions is the fixed dimension-vector length every HAR array
// carries, regardless of its actual rank; unused positions are 1.
const numDimensions = 7

// HeaderArray is the public, immutable logical object produced by the
// reader (or the solution assembler) and consumed by the writers. A
// single concrete type carries a tagged-variant payload instead of the
// source model's per-element-type generic object: the payload field
// selected by Type (Reals, Strings, Ints, or RealList) is populated.
type HeaderArray struct {
	Header            string
	Description       string
	Type              ArrayType
	Dimensions        [numDimensions]int32
	Sets              []SetDef
	SerializedVectors int

	Reals   *SequenceDictionary[float32]
	Strings *SequenceDictionary[string]
	Ints    *SequenceDictionary[int32]

	// RealList holds the flat value vector for Type == TypeRealList,
	// which carries dimensions but no named sets (spec §4.6).
	RealList []float32
}

// paddedHeader right-pads (with spaces) or truncates name to exactly 4
// ASCII characters, the on-wire width of a header.
func paddedHeader(name string) string {
	if len(name) >= 4 {
		return name[:4]
	}
	return name + strings.Repeat(" ", 4-len(name))
}

// With returns a shallow copy of a with its header renamed.
func (a *HeaderArray) With(newHeader string) *HeaderArray {
	cp := *a
	cp.Header = paddedHeader(newHeader)
	return &cp
}

// validate checks the cross-field invariants from spec §3: the product
// of set sizes must equal the product of the array's non-unit
// dimensions, and the payload for the array's declared Type must be
// populated. Payload fields of other types are not checked.
func (a *HeaderArray) validate() error {
	setProduct := 1
	for _, s := range a.Sets {
		setProduct *= s.Size()
	}
	dimProduct := 1
	for _, d := range a.Dimensions {
		if d > 1 {
			dimProduct *= int(d)
		}
	}
	if len(a.Sets) > 0 && setProduct != dimProduct {
		return invalidData(
			"set/dimension product mismatch for %q: sets=%d dims=%d",
			a.Header, setProduct, dimProduct)
	}

	switch a.Type {
	case TypeReal, TypeRealNoSet:
		if a.Reals == nil {
			return invalidData("array %q declared type %s but has no real payload", a.Header, a.Type)
		}
	case TypeRealList:
		if a.RealList == nil {
			return invalidData("array %q declared type %s but has no real-list payload", a.Header, a.Type)
		}
	case TypeCharacter:
		if a.Strings == nil {
			return invalidData("array %q declared type %s but has no string payload", a.Header, a.Type)
		}
	case TypeInteger:
		if a.Ints == nil {
			return invalidData("array %q declared type %s but has no integer payload", a.Header, a.Type)
		}
	default:
		return invalidData("unknown array type %q for header %q", a.Type, a.Header)
	}
	return nil
}

// indexSet synthesizes a single positional set of size n, labeled "0"
// through "n-1". Arrays declared with zero defining sets (labels-header
// a == 0, e.g. "2R" or an unkeyed "1C" vector) still need an addressable
// key space for SequenceDictionary storage; without this, a zero-set
// array's expanded enumeration would be empty and every value would be
// silently dropped on read.
func indexSet(n int) []SetDef {
	elems := make([]string, n)
	for i := range elems {
		elems[i] = strconv.Itoa(i)
	}
	return []SetDef{{Elements: elems}}
}

// dimsFromSets derives the fixed 7-slot dimension vector from a list of
// defining sets, padding unused trailing positions with 1.
func dimsFromSets(sets []SetDef) [numDimensions]int32 {
	var dims [numDimensions]int32
	for i := range dims {
		dims[i] = 1
	}
	for i, s := range sets {
		if i >= numDimensions {
			break
		}
		dims[i] = int32(s.Size())
	}
	return dims
}

func (a *HeaderArray) String() string {
	return fmt.Sprintf("HeaderArray{%s %q type=%s sets=%d}", a.Header, a.Description, a.Type, len(a.Sets))
}
