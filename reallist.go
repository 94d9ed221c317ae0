// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"encoding/binary"
	"math"
)

// readRealList decodes the "RL" payload (spec §4.6): a degenerate dense
// real of rank up to 7, with a dimension record, a dimension-description
// record, and a flat data record of n floats. No set labels.
//
// Design Notes §9 Open Question 1 flags the original reader's mixed
// byte-offset/element-index stride through the dimension-description
// record as likely a bug. Per DESIGN.md this is re-derived: the
// dimension-description record is read whole and discarded through
// readDimensionDescriptor, as the dense RE reader does; its contents
// are not walked at all.
func (rd *Reader) readRealList(n int) ([]float32, error) {
	if err := rd.readDimensionDescriptor(); err != nil {
		return nil, err
	}

	payload, err := rd.rr.readRecord()
	if err != nil {
		return nil, err
	}
	if len(payload) < n*4 {
		return nil, invalidData("RL data record too short for %d elements", n)
	}

	values := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(payload[i*4 : i*4+4])
		values[i] = math.Float32frombits(bits)
	}
	return values, nil
}

// writeRealList emits values as an "RL" payload.
func (w *Writer) writeRealList(values []float32, dims [numDimensions]int32) error {
	if err := w.writeExtents(dims); err != nil {
		return err
	}
	if err := w.writeDimensionDescriptor(dims); err != nil {
		return err
	}

	payload := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(payload[i*4:i*4+4], math.Float32bits(v))
	}
	return w.rw.writeRecord(payload)
}
