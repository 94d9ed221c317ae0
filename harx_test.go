// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"testing"
)

func TestHARXRoundTrip(t *testing.T) {
	sets := []SetDef{{Name: "REG", Elements: []string{"AUS", "USA"}}}
	dict := NewSequenceDictionary[float32](sets)
	dict.Insert(KeySequence{"AUS"}, 1.25)

	arr := &HeaderArray{
		Header: "GDP1", Description: "gross domestic product", Type: TypeReal,
		Dimensions: dimsFromSets(sets), Sets: sets, Reals: dict,
	}

	var buf bytes.Buffer
	if err := WriteHARX(&buf, []*HeaderArray{arr}); err != nil {
		t.Fatalf("WriteHARX failed: %v", err)
	}

	got, err := ReadHARX(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadHARX failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Header != "GDP1" {
		t.Errorf("Header = %q, want GDP1", got[0].Header)
	}
	if v := got[0].Reals.Get(KeySequence{"AUS"}); v != 1.25 {
		t.Errorf(`got["AUS"] = %v, want 1.25`, v)
	}
}

func TestHARXChecksumDetectsCorruption(t *testing.T) {
	arr := &HeaderArray{
		Header: "GDP1", Type: TypeRealList,
		Dimensions: [numDimensions]int32{2, 1, 1, 1, 1, 1, 1},
		RealList:   []float32{1, 2},
	}
	doc, err := toHARXDoc(arr)
	if err != nil {
		t.Fatalf("toHARXDoc failed: %v", err)
	}
	// Tamper with an entry's value without updating the checksum, as if
	// the archive had been hand-edited after packing.
	doc.Entries["0"] = json.RawMessage(`999`)

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("GDP1.json")
	if err != nil {
		t.Fatalf("zip.Create failed: %v", err)
	}
	if _, err := entry.Write(raw); err != nil {
		t.Fatalf("zip entry write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close failed: %v", err)
	}

	if _, err := ReadHARX(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err == nil {
		t.Error("ReadHARX on a tampered entry expected a checksum error, got nil")
	}
}
