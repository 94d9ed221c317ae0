// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"encoding/binary"
	"math"
)

// readSetLabels decodes the labels header and per-set label blocks
// common to dense and sparse RE arrays (spec §4.4 steps 1-2): a
// (a, b, c) triple, an 8-byte set-group header, a names blob of 12-byte
// entries, then one record per set giving that set's element labels.
func (rd *Reader) readSetLabels() ([]SetDef, error) {
	payload, err := rd.rr.readRecord()
	if err != nil {
		return nil, err
	}
	if len(payload) < 12 {
		return nil, invalidData("RE labels-header record too short")
	}
	a := int32(binary.LittleEndian.Uint32(payload[0:4]))

	if a <= 0 {
		return nil, nil
	}

	// 8-byte set-group header, then 12-byte set-name entries.
	namesStart := 12 + 8
	var setNames []string
	for off := namesStart; off+12 <= len(payload); off += 12 {
		setNames = append(setNames, trimFixedString(payload[off:off+12]))
		if len(setNames) >= int(a) {
			break
		}
	}

	sets := make([]SetDef, 0, a)
	for i := 0; i < int(a); i++ {
		labelPayload, err := rd.rr.readRecord()
		if err != nil {
			return nil, err
		}
		if len(labelPayload) < 12 {
			return nil, invalidData("RE set-label record too short")
		}
		labelCount := int32(binary.LittleEndian.Uint32(labelPayload[4:8]))

		elems := make([]string, 0, labelCount)
		for off := 12; off+12 <= len(labelPayload) && len(elems) < int(labelCount); off += 12 {
			elems = append(elems, trimFixedString(labelPayload[off:off+12]))
		}

		name := ""
		if i < len(setNames) {
			name = setNames[i]
		}
		sets = append(sets, SetDef{Name: name, Elements: elems})
	}
	return sets, nil
}

// readExtents decodes the extent record (spec §4.4 step 3): trailing
// record count, the fixed dimension cap (7), and the seven dimension
// extents. It returns the authoritative element count N = product(dims).
func (rd *Reader) readExtents() ([numDimensions]int32, int, error) {
	var dims [numDimensions]int32
	payload, err := rd.rr.readRecord()
	if err != nil {
		return dims, 0, err
	}
	if len(payload) < 8+numDimensions*4 {
		return dims, 0, invalidData("RE extent record too short")
	}
	n := 1
	for i := 0; i < numDimensions; i++ {
		off := 8 + i*4
		d := int32(binary.LittleEndian.Uint32(payload[off : off+4]))
		if d < 1 {
			d = 1
		}
		dims[i] = d
		n *= int(d)
	}
	return dims, n, nil
}

// readDimensionDescriptor reads and discards the dimension-descriptor
// sub-record that accompanies a labeled, non-empty dense array (spec
// §4.4 step 4). It carries per-set slice bounds used by partial reads;
// full-array reads do not need its contents.
func (rd *Reader) readDimensionDescriptor() error {
	_, err := rd.rr.readRecord()
	return err
}

// readDenseReal decodes the "RE ... FULL" payload (spec §4.4).
func (rd *Reader) readDenseReal(sets []SetDef, dims [numDimensions]int32, n int) (*SequenceDictionary[float32], error) {
	dict := NewSequenceDictionary[float32](sets)
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
		return nil, invalidData("RE dense data record too short for %d elements", n)
	}
	body := payload[4:]

	i := 0
	for key := range dict.ExpandedKeys() {
		if i >= n {
			break
		}
		bits := binary.LittleEndian.Uint32(body[i*4 : i*4+4])
		v := math.Float32frombits(bits)
		dict.Insert(key, v)
		i++
	}
	return dict, nil
}

// writeDenseReal emits dict's column-major data record (and, when the
// array has defining sets, the dimension descriptor that precedes it).
// The caller writes the shared labels and extent records first.
func (w *Writer) writeDenseReal(dict *SequenceDictionary[float32]) error {
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
		binary.LittleEndian.PutUint32(body[off:off+4], math.Float32bits(v))
		i++
	}
	return w.rw.writeRecord(body)
}

// writeSetLabels is the writer-side counterpart of readSetLabels.
func (w *Writer) writeSetLabels(sets []SetDef) error {
	header := make([]byte, 12+8+12*len(sets))
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(sets)))
	copy(header[12:20], strings12("SETS"))
	off := 20
	for _, s := range sets {
		copy(header[off:off+12], fixedWidth(s.Name, 12))
		off += 12
	}
	if err := w.rw.writeRecord(header); err != nil {
		return err
	}

	for _, s := range sets {
		payload := make([]byte, 12+12*len(s.Elements))
		binary.LittleEndian.PutUint32(payload[0:4], 1)
		binary.LittleEndian.PutUint32(payload[4:8], uint32(len(s.Elements)))
		binary.LittleEndian.PutUint32(payload[8:12], uint32(len(s.Elements)))
		for i, e := range s.Elements {
			copy(payload[12+i*12:12+i*12+12], fixedWidth(e, 12))
		}
		if err := w.rw.writeRecord(payload); err != nil {
			return err
		}
	}
	return nil
}

// writeExtents is the writer-side counterpart of readExtents.
func (w *Writer) writeExtents(dims [numDimensions]int32) error {
	payload := make([]byte, 8+numDimensions*4)
	binary.LittleEndian.PutUint32(payload[0:4], 1)
	binary.LittleEndian.PutUint32(payload[4:8], numDimensions)
	for i, d := range dims {
		binary.LittleEndian.PutUint32(payload[8+i*4:12+i*4], uint32(d))
	}
	return w.rw.writeRecord(payload)
}

// writeDimensionDescriptor writes a minimal dimension-descriptor record
// covering the full extent of each dimension (no partial-read slicing).
func (w *Writer) writeDimensionDescriptor(dims [numDimensions]int32) error {
	payload := make([]byte, numDimensions*8)
	for i, d := range dims {
		binary.LittleEndian.PutUint32(payload[i*8:i*8+4], 1)
		binary.LittleEndian.PutUint32(payload[i*8+4:i*8+8], uint32(d))
	}
	return w.rw.writeRecord(payload)
}

func fixedWidth(s string, width int) []byte {
	b := make([]byte, width)
	copy(b, s)
	for i := len(s); i < width; i++ {
		b[i] = ' '
	}
	return b
}

func strings12(s string) []byte { return fixedWidth(s, 8) }
