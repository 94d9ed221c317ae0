// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import "encoding/binary"

// readIntegerArray decodes a "2I" payload, sharing the dense/sparse
// record shapes used by "RE" but with 4-byte signed-integer elements in
// place of IEEE-754 floats.
func (rd *Reader) readIntegerArray(sets []SetDef, dims [numDimensions]int32, n int, dense bool) (*SequenceDictionary[int32], error) {
	dict := NewSequenceDictionary[int32](sets)

	if dense {
		if len(sets) > 0 && n > 0 {
			if err := rd.readDimensionDescriptor(); err != nil {
				return nil, err
			}
		}
		payload, err := rd.rr.readRecord()
		if err != nil {
			return nil, err
		}
		if len(payload) < 4+n*4 {
			return nil, invalidData("2I dense data record too short for %d elements", n)
		}
		body := payload[4:]
		i := 0
		for key := range dict.ExpandedKeys() {
			if i >= n {
				break
			}
			v := int32(binary.LittleEndian.Uint32(body[i*4 : i*4+4]))
			dict.Insert(key, v)
			i++
		}
		return dict, nil
	}

	countPayload, err := rd.rr.readRecord()
	if err != nil {
		return nil, err
	}
	if len(countPayload) < 12 {
		return nil, invalidData("2I sparse value-count record too short")
	}
	nnz := int(int32(binary.LittleEndian.Uint32(countPayload[0:4])))

	consumed := 0
	for consumed < nnz {
		payload, err := rd.rr.readRecord()
		if err != nil {
			return nil, err
		}
		if len(payload) < 12 {
			return nil, invalidData("2I sparse data record too short")
		}
		k := int(int32(binary.LittleEndian.Uint32(payload[8:12])))
		if k <= 0 {
			return nil, invalidData("2I sparse data record declares non-positive count")
		}
		indicesStart := 12
		indicesEnd := indicesStart + k*4
		valuesEnd := indicesEnd + k*4
		if valuesEnd > len(payload) {
			return nil, invalidData("2I sparse data record truncated for %d entries", k)
		}
		for i := 0; i < k; i++ {
			idx1Based := int32(binary.LittleEndian.Uint32(payload[indicesStart+i*4 : indicesStart+i*4+4]))
			v := int32(binary.LittleEndian.Uint32(payload[indicesEnd+i*4 : indicesEnd+i*4+4]))
			pos := int(idx1Based) - 1
			if pos < 0 || pos >= n {
				return nil, invalidData("2I sparse index %d out of range [0,%d)", pos, n)
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

// writeIntegerArray emits dict as a dense "2I ... FULL" payload.
func (w *Writer) writeIntegerArray(dict *SequenceDictionary[int32]) error {
	sets := dict.Sets()
	dims := dimsFromSets(sets)
	n := dict.Size()
	if len(sets) > 0 && n > 0 {
		if err := w.writeDimensionDescriptor(dims); err != nil {
			return err
		}
	}

	body := make([]byte, 4+n*4)
	binary.LittleEndian.PutUint32(body[0:4], uint32(len(sets)))
	i := 0
	for key := range dict.ExpandedKeys() {
		v := dict.Get(key)
		off := 4 + i*4
		binary.LittleEndian.PutUint32(body[off:off+4], uint32(v))
		i++
	}
	return w.rw.writeRecord(body)
}
