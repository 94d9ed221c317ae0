// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"encoding/binary"
)

// readStringArray decodes the "1C" payload (spec §4.3): one or more
// value records, each preceded by a dimension triple (subRecordCount,
// totalStrings, maxPerSubRecord). Strings are addressed by fixed,
// uniform per-record stride.
func (rd *Reader) readStringArray(sets []SetDef, n int) (*SequenceDictionary[string], int, error) {
	dict := NewSequenceDictionary[string](sets)

	var allStrings []string
	var subRecordCount int32
	first := true
	var maxPerRecord int32

	for {
		payload, err := rd.rr.readRecord()
		if err != nil {
			return nil, 0, err
		}
		if len(payload) < 12 {
			return nil, 0, invalidData("1C record too short for header triple: %d bytes", len(payload))
		}
		x0 := int32(binary.LittleEndian.Uint32(payload[0:4]))
		x1 := int32(binary.LittleEndian.Uint32(payload[4:8]))
		x2 := int32(binary.LittleEndian.Uint32(payload[8:12]))

		if first {
			subRecordCount = x0
			maxPerRecord = x2
			if int(x1) != n {
				return nil, 0, invalidData(
					"1C total string count %d disagrees with dimension extent %d", x1, n)
			}
			first = false
		}

		body := payload[12:]
		if maxPerRecord <= 0 {
			return nil, 0, invalidData("1C array declares non-positive per-record string count")
		}
		elemSize := len(body) / int(maxPerRecord)
		if elemSize <= 0 {
			return nil, 0, invalidData("1C array has non-positive element size")
		}

		remaining := int(x1) - len(allStrings)
		countThisRecord := int(maxPerRecord)
		if remaining < countThisRecord {
			countThisRecord = remaining
		}
		for j := 0; j < countThisRecord; j++ {
			off := j * elemSize
			if off+elemSize > len(body) {
				break
			}
			s := trimFixedString(body[off : off+elemSize])
			allStrings = append(allStrings, s)
		}

		if len(allStrings) >= int(x1) {
			break
		}
	}

	for i, elems := range expandSets(sets) {
		if i >= len(allStrings) {
			break
		}
		dict.Insert(elems, allStrings[i])
	}

	return dict, int(subRecordCount), nil
}

// trimFixedString trims trailing NUL, STX (0x02), and space padding from
// a fixed-width ASCII field.
func trimFixedString(b []byte) string {
	end := len(b)
	for end > 0 {
		c := b[end-1]
		if c == 0 || c == 0x02 || c == ' ' {
			end--
			continue
		}
		break
	}
	return string(b[:end])
}

// expandSets returns the full Cartesian product of sets in reverse-lex
// order (last set varies slowest), used to zip a flat on-wire string
// list back onto its logical key sequence.
func expandSets(sets []SetDef) []KeySequence {
	tmp := NewSequenceDictionary[string](sets)
	var out []KeySequence
	for k := range tmp.ExpandedKeys() {
		out = append(out, k)
	}
	return out
}

// maxStringsPerRecord bounds how many fixed-width strings are packed
// into a single 1C sub-record, matching typical Fortran buffer sizing.
const maxStringsPerRecord = 12

// writeStringArray encodes dict as the "1C" payload. When the source
// array specified serializedVectors (spec §4.9), records are sized so
// that at most that many sub-records are used (fewer when the strings
// do not divide evenly); otherwise records are sized from
// maxStringsPerRecord.
func (w *Writer) writeStringArray(dict *SequenceDictionary[string], serializedVectors int) error {
	var values []string
	elemSize := 1
	for k := range dict.ExpandedKeys() {
		v := dict.Get(k)
		if len(v) > elemSize {
			elemSize = len(v)
		}
		values = append(values, v)
	}

	total := len(values)
	maxPerRecord := maxStringsPerRecord
	if serializedVectors > 0 {
		maxPerRecord = (total + serializedVectors - 1) / serializedVectors
		if maxPerRecord < 1 {
			maxPerRecord = 1
		}
	}

	numRecords := 1
	if maxPerRecord > 0 {
		numRecords = (total + maxPerRecord - 1) / maxPerRecord
	}
	if numRecords == 0 {
		numRecords = 1
	}

	for rec := 0; rec < numRecords; rec++ {
		start := rec * maxPerRecord
		end := start + maxPerRecord
		if end > total {
			end = total
		}

		// Every record carries maxPerRecord slots (blank-filled past the
		// last string) so the reader's size = len(body)/maxPerRecord holds.
		body := make([]byte, maxPerRecord*elemSize)
		for i := range body {
			body[i] = ' '
		}
		for j, s := range values[start:end] {
			copy(body[j*elemSize:], s)
		}

		header := make([]byte, 12)
		binary.LittleEndian.PutUint32(header[0:4], uint32(numRecords))
		binary.LittleEndian.PutUint32(header[4:8], uint32(total))
		binary.LittleEndian.PutUint32(header[8:12], uint32(maxPerRecord))

		if err := w.rw.writeRecord(append(header, body...)); err != nil {
			return err
		}
	}
	return nil
}
