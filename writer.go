// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"encoding/binary"
	"io"

	"github.com/gtap-toolkit/har/internal/log"
)

// DefaultSparseThreshold is the density below which WriterOptions, left
// unset, chooses a sparse "RE" encoding over a dense one (spec §4.9):
// sparse if nnz < threshold * total.
const DefaultSparseThreshold = 0.5

// WriterOptions configures a Writer.
type WriterOptions struct {
	// SparseThreshold selects dense vs sparse RE encoding: an array is
	// written sparse when its non-default density is below this
	// fraction of its logical size. Zero means DefaultSparseThreshold.
	SparseThreshold float64

	// Logger receives a Debug entry per array naming the encoding
	// chosen. Defaults to a filtered stdout logger at LevelError.
	Logger *log.Helper
}

// Writer emits the binary HAR form of a sequence of HeaderArrays, the
// inverse of Reader (spec §4.9).
type Writer struct {
	rw        *recordWriter
	threshold float64
	logger    *log.Helper
}

// NewWriter wraps w. opts may be nil.
func NewWriter(w io.Writer, opts *WriterOptions) *Writer {
	wr := &Writer{rw: newRecordWriter(w), threshold: DefaultSparseThreshold, logger: log.Default()}
	if opts != nil {
		if opts.SparseThreshold > 0 {
			wr.threshold = opts.SparseThreshold
		}
		if opts.Logger != nil {
			wr.logger = opts.Logger
		}
	}
	return wr
}

// Write emits one array: its header record, its description record, and
// its type-specific payload.
func (w *Writer) Write(arr *HeaderArray) error {
	if err := arr.validate(); err != nil {
		return err
	}

	if err := w.rw.writeRecord([]byte(paddedHeader(arr.Header))); err != nil {
		return err
	}

	dense := arr.Type != TypeReal || w.isDense(arr.Reals)
	marker := "FULL"
	if arr.Type == TypeReal && !dense {
		marker = "SPSE"
	}
	if arr.Type == TypeReal {
		w.logger.Debugf("writing %q as %s (%d/%d non-default entries)",
			arr.Header, marker, arr.Reals.Len(), arr.Reals.Size())
	}

	descBody := make([]byte, 80)
	copy(descBody[0:2], arr.Type)
	copy(descBody[2:6], marker)
	copy(descBody[6:76], fixedWidth(arr.Description, 70))
	rank := int32(len(arr.Sets))
	binary.LittleEndian.PutUint32(descBody[76:80], uint32(rank))
	for i := 0; i < int(rank) && i < len(arr.Dimensions); i++ {
		descBody = append(descBody, make([]byte, 4)...)
		binary.LittleEndian.PutUint32(descBody[len(descBody)-4:], uint32(arr.Dimensions[i]))
	}
	if err := w.rw.writePaddedRecord(descBody); err != nil {
		return err
	}

	switch arr.Type {
	case TypeCharacter:
		if err := w.writeSetLabels(arr.Sets); err != nil {
			return err
		}
		if err := w.writeExtents(dimsFromSets(arr.Sets)); err != nil {
			return err
		}
		return w.writeStringArray(arr.Strings, arr.SerializedVectors)

	case TypeReal, TypeRealNoSet:
		if err := w.writeSetLabels(arr.Sets); err != nil {
			return err
		}
		if err := w.writeExtents(dimsFromSets(arr.Sets)); err != nil {
			return err
		}
		if dense {
			return w.writeDenseReal(arr.Reals)
		}
		return w.writeSparseReal(arr.Reals)

	case TypeRealList:
		return w.writeRealList(arr.RealList, arr.Dimensions)

	case TypeInteger:
		if err := w.writeSetLabels(arr.Sets); err != nil {
			return err
		}
		if err := w.writeExtents(dimsFromSets(arr.Sets)); err != nil {
			return err
		}
		return w.writeIntegerArray(arr.Ints)

	default:
		return invalidData("unknown array type %q for header %q", arr.Type, arr.Header)
	}
}

// isDense reports whether dict's non-default density is at or above the
// writer's sparse threshold.
func (w *Writer) isDense(dict *SequenceDictionary[float32]) bool {
	size := dict.Size()
	if size == 0 {
		return true
	}
	return float64(dict.Len())/float64(size) >= w.threshold
}
