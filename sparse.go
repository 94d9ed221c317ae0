// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"encoding/binary"
	"math"
)

// sparseRecordCap bounds how many (index, value) pairs are packed into a
// single sparse data sub-record, mirroring Fortran's historical fixed
// buffer size.
const sparseRecordCap = 1000

// rowMajorStrides returns, for each set in sets, the stride of its axis
// in the row-major expansion of the d0..d6 space (last axis fastest):
// strides[i] is the product of the sizes of every set after i.
func rowMajorStrides(sets []SetDef) []int {
	strides := make([]int, len(sets))
	stride := 1
	for i := len(sets) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= sets[i].Size()
	}
	return strides
}

// rowMajorIndex returns key's 0-based position in the row-major
// expansion of sets (spec §4.5: the sparse on-wire linear index walks
// d0..d6 with the last axis fastest), the inverse of the column-major
// order ExpandedKeys produces.
func rowMajorIndex(sets []SetDef, key KeySequence) (int, error) {
	if len(key) != len(sets) {
		return 0, invalidData("key %v has %d components, want %d", key, len(key), len(sets))
	}
	strides := rowMajorStrides(sets)
	pos := 0
	for i, s := range sets {
		elemIdx := s.indexOf(key[i])
		if elemIdx < 0 {
			return 0, invalidData("key component %q not found in set %q", key[i], s.Name)
		}
		pos += elemIdx * strides[i]
	}
	return pos, nil
}

// rowMajorKey unflattens a 0-based row-major position back into its
// defining-set key tuple, the inverse of rowMajorIndex.
func rowMajorKey(sets []SetDef, pos int) (KeySequence, error) {
	strides := rowMajorStrides(sets)
	key := make(KeySequence, len(sets))
	for i, s := range sets {
		elemIdx := pos / strides[i]
		pos -= elemIdx * strides[i]
		if elemIdx < 0 || elemIdx >= s.Size() {
			return nil, invalidData("row-major index out of range for set %q", s.Name)
		}
		key[i] = s.Elements[elemIdx]
	}
	return key, nil
}

// readSparseReal decodes the "RE" non-FULL payload (spec §4.5). The
// logical space is sized from n = product(dims), the authoritative
// extent (Open Question 2: not from the defining-set or stored-entry
// count). On-wire linear indices address the row-major expansion of
// d0..d6, not ExpandedKeys' column-major order, so each index is
// unflattened via rowMajorKey rather than positionally matched against
// ExpandedKeys.
func (rd *Reader) readSparseReal(sets []SetDef, dims [numDimensions]int32, n int) (*SequenceDictionary[float32], error) {
	dict := NewSequenceDictionary[float32](sets)

	countPayload, err := rd.rr.readRecord()
	if err != nil {
		return nil, err
	}
	if len(countPayload) < 12 {
		return nil, invalidData("RE sparse value-count record too short")
	}
	nnz := int(int32(binary.LittleEndian.Uint32(countPayload[0:4])))

	// At least one data record always follows the value-count record,
	// even when nnz is 0 (the writer then emits a single empty one).
	consumed := 0
	for first := true; first || consumed < nnz; first = false {
		payload, err := rd.rr.readRecord()
		if err != nil {
			return nil, err
		}
		if len(payload) < 12 {
			return nil, invalidData("RE sparse data record too short")
		}
		k := int(int32(binary.LittleEndian.Uint32(payload[8:12])))
		if k < 0 {
			return nil, invalidData("RE sparse data record declares negative count")
		}

		indicesStart := 12
		indicesEnd := indicesStart + k*4
		valuesEnd := indicesEnd + k*4
		if valuesEnd > len(payload) {
			return nil, invalidData("RE sparse data record truncated for %d entries", k)
		}

		for i := 0; i < k; i++ {
			idx1Based := int32(binary.LittleEndian.Uint32(payload[indicesStart+i*4 : indicesStart+i*4+4]))
			bits := binary.LittleEndian.Uint32(payload[indicesEnd+i*4 : indicesEnd+i*4+4])
			v := math.Float32frombits(bits)

			pos := int(idx1Based) - 1
			if pos < 0 || pos >= n {
				return nil, invalidData("RE sparse index %d out of range [0,%d)", pos, n)
			}
			key, err := rowMajorKey(sets, pos)
			if err != nil {
				return nil, err
			}
			dict.Insert(key, v)
		}
		consumed += k
	}
	return dict, nil
}

// writeSparseReal emits dict's value-count record and one or more "RE"
// non-FULL data records, splitting the non-default entries across
// records bounded by sparseRecordCap. The caller writes the shared
// labels and extent records first.
func (w *Writer) writeSparseReal(dict *SequenceDictionary[float32]) error {
	// Map each non-default entry to its 1-based linear index in the
	// row-major expansion of the dims space (spec §4.5), walked in
	// ascending row-major position rather than ExpandedKeys' (column-
	// major) order.
	type linearEntry struct {
		idx int
		val float32
	}
	sets := dict.Sets()
	var entries []linearEntry
	var zero float32
	for pos := 0; pos < dict.Size(); pos++ {
		key, err := rowMajorKey(sets, pos)
		if err != nil {
			return err
		}
		if v := dict.Get(key); v != zero {
			entries = append(entries, linearEntry{idx: pos + 1, val: v})
		}
	}

	countPayload := make([]byte, 12)
	binary.LittleEndian.PutUint32(countPayload[0:4], uint32(len(entries)))
	if err := w.rw.writeRecord(countPayload); err != nil {
		return err
	}

	for start := 0; start < len(entries) || start == 0; start += sparseRecordCap {
		end := start + sparseRecordCap
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[start:end]

		payload := make([]byte, 12+len(chunk)*8)
		binary.LittleEndian.PutUint32(payload[0:4], 1)
		binary.LittleEndian.PutUint32(payload[8:12], uint32(len(chunk)))

		indicesStart := 12
		valuesStart := indicesStart + len(chunk)*4
		for i, e := range chunk {
			binary.LittleEndian.PutUint32(payload[indicesStart+i*4:indicesStart+i*4+4], uint32(e.idx))
			binary.LittleEndian.PutUint32(payload[valuesStart+i*4:valuesStart+i*4+4], math.Float32bits(e.val))
		}
		if err := w.rw.writeRecord(payload); err != nil {
			return err
		}
		if len(entries) == 0 {
			break
		}
	}
	return nil
}
