// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import "testing"

func TestHeaderArrayWith(t *testing.T) {
	a := &HeaderArray{Header: "GDP1", Type: TypeRealList, RealList: []float32{1}}
	b := a.With("GDP2")

	if b.Header != "GDP2" {
		t.Errorf("With(GDP2).Header = %q, want GDP2", b.Header)
	}
	if a.Header != "GDP1" {
		t.Errorf("With should not mutate the original: Header = %q, want GDP1", a.Header)
	}
}

func TestPaddedHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{"GDP", "GDP "},
		{"GDP1", "GDP1"},
		{"GDP12", "GDP1"},
		{"", "    "},
	}
	for _, tt := range tests {
		if got := paddedHeader(tt.in); got != tt.want {
			t.Errorf("paddedHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateSetDimensionMismatch(t *testing.T) {
	a := &HeaderArray{
		Header:     "BAD1",
		Type:       TypeReal,
		Sets:       []SetDef{{Name: "REG", Elements: []string{"AUS", "USA"}}},
		Dimensions: [numDimensions]int32{3, 1, 1, 1, 1, 1, 1},
		Reals:      NewSequenceDictionary[float32](nil),
	}
	if err := a.validate(); err == nil {
		t.Fatal("validate() expected a set/dimension product mismatch error, got nil")
	}
}

func TestValidateMissingPayload(t *testing.T) {
	a := &HeaderArray{Header: "BAD2", Type: TypeReal}
	if err := a.validate(); err == nil {
		t.Fatal("validate() expected an error for a RE array with no Reals payload, got nil")
	}
}
