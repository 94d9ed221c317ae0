// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// HARX is the portable JSON-in-ZIP re-encoding of a HAR file (spec §6).
// The ZIP container and JSON framework are both explicitly out of core
// scope (treated as an opaque "archive of named JSON blobs"); this file
// is the thin adapter between that opaque container and the HeaderArray
// model.
package har

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/flate"
)

func init() {
	// Swap in klauspost/compress's faster flate implementation for the
	// archive/zip Deflate method, used by both ReadHARX and WriteHARX.
	zip.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}

// harxSet is the JSON form of one defining set.
type harxSet struct {
	Key   string   `json:"Key"`
	Value []string `json:"Value"`
}

// harxDoc is the JSON form of one HeaderArray, one per ZIP member named
// "{header}.json".
type harxDoc struct {
	Header            string                     `json:"Header"`
	Description       string                     `json:"Description"`
	Type              string                     `json:"Type"`
	Dimensions        [numDimensions]int32       `json:"Dimensions"`
	Sets              []harxSet                  `json:"Sets"`
	SerializedVectors int                        `json:"SerializedVectors"`
	Entries           map[string]json.RawMessage `json:"Entries"`
	Checksum          uint64                     `json:"Checksum"`
}

func setsToHARX(sets []SetDef) []harxSet {
	out := make([]harxSet, len(sets))
	for i, s := range sets {
		out[i] = harxSet{Key: s.Name, Value: s.Elements}
	}
	return out
}

func setsFromHARX(sets []harxSet) []SetDef {
	out := make([]SetDef, len(sets))
	for i, s := range sets {
		out[i] = SetDef{Name: s.Key, Elements: s.Value}
	}
	return out
}

// toHARXDoc converts a HeaderArray to its JSON document form.
func toHARXDoc(arr *HeaderArray) (*harxDoc, error) {
	doc := &harxDoc{
		Header:            arr.Header,
		Description:       arr.Description,
		Type:              string(arr.Type),
		Dimensions:        arr.Dimensions,
		Sets:              setsToHARX(arr.Sets),
		SerializedVectors: arr.SerializedVectors,
		Entries:           map[string]json.RawMessage{},
	}

	marshalEntry := func(key string, v interface{}) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		doc.Entries[key] = raw
		return nil
	}

	switch arr.Type {
	case TypeCharacter:
		for k, v := range arr.Strings.Entries() {
			if err := marshalEntry(k.String(), v); err != nil {
				return nil, err
			}
		}
	case TypeReal, TypeRealNoSet:
		for k, v := range arr.Reals.Entries() {
			if err := marshalEntry(k.String(), v); err != nil {
				return nil, err
			}
		}
	case TypeInteger:
		for k, v := range arr.Ints.Entries() {
			if err := marshalEntry(k.String(), v); err != nil {
				return nil, err
			}
		}
	case TypeRealList:
		for i, v := range arr.RealList {
			if err := marshalEntry(strconv.Itoa(i), v); err != nil {
				return nil, err
			}
		}
	default:
		return nil, invalidData("unknown array type %q for header %q", arr.Type, arr.Header)
	}

	raw, err := json.Marshal(doc.Entries)
	if err != nil {
		return nil, err
	}
	doc.Checksum = contentChecksum(raw)
	return doc, nil
}

// fromHARXDoc converts a JSON document back to a HeaderArray.
func fromHARXDoc(doc *harxDoc) (*HeaderArray, error) {
	sets := setsFromHARX(doc.Sets)
	arr := &HeaderArray{
		Header:            doc.Header,
		Description:       doc.Description,
		Type:              ArrayType(doc.Type),
		Dimensions:        doc.Dimensions,
		Sets:              sets,
		SerializedVectors: doc.SerializedVectors,
	}

	switch arr.Type {
	case TypeCharacter:
		dict := NewSequenceDictionary[string](sets)
		for k := range dict.ExpandedKeys() {
			raw, ok := doc.Entries[k.String()]
			if !ok {
				continue
			}
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			dict.Insert(k, v)
		}
		arr.Strings = dict

	case TypeReal, TypeRealNoSet:
		dict := NewSequenceDictionary[float32](sets)
		for k := range dict.ExpandedKeys() {
			raw, ok := doc.Entries[k.String()]
			if !ok {
				continue
			}
			var v float32
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			dict.Insert(k, v)
		}
		arr.Reals = dict

	case TypeInteger:
		dict := NewSequenceDictionary[int32](sets)
		for k := range dict.ExpandedKeys() {
			raw, ok := doc.Entries[k.String()]
			if !ok {
				continue
			}
			var v int32
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			dict.Insert(k, v)
		}
		arr.Ints = dict

	case TypeRealList:
		n := 1
		for _, d := range doc.Dimensions {
			if d > 1 {
				n *= int(d)
			}
		}
		values := make([]float32, n)
		for i := range values {
			raw, ok := doc.Entries[strconv.Itoa(i)]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &values[i]); err != nil {
				return nil, err
			}
		}
		arr.RealList = values

	default:
		return nil, invalidData("unknown array type %q for header %q", arr.Type, arr.Header)
	}

	return arr, arr.validate()
}

// WriteHARX writes arrays as a HARX archive: one "{header}.json" ZIP
// member per array.
func WriteHARX(w io.Writer, arrays []*HeaderArray) error {
	zw := zip.NewWriter(w)
	for _, arr := range arrays {
		doc, err := toHARXDoc(arr)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		entry, err := zw.Create(fmt.Sprintf("%s.json", arr.Header))
		if err != nil {
			return err
		}
		if _, err := entry.Write(raw); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadHARX reads every member of a HARX archive of total size size back
// into HeaderArrays, in ZIP directory order. Members are not filtered by
// name: each one must hold a HARX JSON document.
func ReadHARX(r io.ReaderAt, size int64) ([]*HeaderArray, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	var out []*HeaderArray
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}

		var doc harxDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}

		entriesRaw, err := json.Marshal(doc.Entries)
		if err != nil {
			return nil, err
		}
		if got := contentChecksum(entriesRaw); doc.Checksum != 0 && got != doc.Checksum {
			return nil, invalidData("harx entry %q failed checksum: expected %x, got %x",
				f.Name, doc.Checksum, got)
		}

		arr, err := fromHARXDoc(&doc)
		if err != nil {
			return nil, err
		}
		out = append(out, arr)
	}
	return out, nil
}
