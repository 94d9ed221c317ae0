// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"encoding/binary"
	"io"

	"github.com/gtap-toolkit/har/internal/log"
)

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	// Logger receives a Debug entry whenever a zero-set array is given a
	// synthetic index set. Defaults to a filtered stdout logger at
	// LevelError.
	Logger *log.Helper
}

// Reader exposes a pull-based, lazy sequence of HeaderArrays parsed from
// a forward HAR/SL4 byte stream (spec §4.8). It owns the stream
// exclusively for the duration of a read session: there is no seekable
// random access.
type Reader struct {
	rr     *recordReader
	logger *log.Helper
}

// NewReader wraps r. opts may be nil.
func NewReader(r io.Reader, opts *ReaderOptions) *Reader {
	rd := &Reader{rr: newRecordReader(r)}
	if opts != nil && opts.Logger != nil {
		rd.logger = opts.Logger
	} else {
		rd.logger = log.Default()
	}
	return rd
}

// Next parses and returns the next array in the stream. It returns
// io.EOF when the stream ends cleanly at an array boundary; any other
// error aborts the current array without attempting to resynchronize.
func (rd *Reader) Next() (_ *HeaderArray, err error) {
	headerPayload, err := rd.rr.readRecord()
	if err != nil {
		return nil, err // io.EOF propagates unchanged at a clean boundary.
	}
	header := string(headerPayload)
	// Past the header record the stream is mid-array: a clean record
	// boundary EOF here is a truncated array, not the end of the file.
	defer func() {
		if err == io.EOF {
			err = ErrUnexpectedEOF
		}
	}()

	descPayload, err := rd.rr.readPaddedRecord()
	if err != nil {
		return nil, err
	}
	if len(descPayload) < 80 {
		return nil, invalidData("header/description record too short")
	}

	typeCode := string(descPayload[0:2])
	marker := string(descPayload[2:6])
	description := trimFixedString(descPayload[6:76])
	rank := int32(binary.LittleEndian.Uint32(descPayload[76:80]))
	if rank < 0 || int(80+rank*4) > len(descPayload) {
		return nil, invalidData("invalid rank %d in header/description record", rank)
	}

	arr := &HeaderArray{
		Header:      header,
		Description: description,
		Type:        ArrayType(typeCode),
	}

	switch arr.Type {
	case TypeCharacter:
		sets, err := rd.readSetLabels()
		if err != nil {
			return nil, err
		}
		dims, n, err := rd.readExtents()
		if err != nil {
			return nil, err
		}
		if len(sets) == 0 && n > 0 {
			rd.logger.Debugf("header %q: declared zero defining sets, substituting a synthetic index set of size %d", header, n)
			sets = indexSet(n)
		}
		dict, vectors, err := rd.readStringArray(sets, n)
		if err != nil {
			return nil, err
		}
		arr.Strings = dict
		arr.SerializedVectors = vectors
		arr.Sets = sets
		arr.Dimensions = dims

	case TypeReal, TypeRealNoSet:
		sets, err := rd.readSetLabels()
		if err != nil {
			return nil, err
		}
		dims, n, err := rd.readExtents()
		if err != nil {
			return nil, err
		}
		if len(sets) == 0 && n > 0 {
			rd.logger.Debugf("header %q: declared zero defining sets, substituting a synthetic index set of size %d", header, n)
			sets = indexSet(n)
		}
		var dict *SequenceDictionary[float32]
		if marker == "FULL" {
			dict, err = rd.readDenseReal(sets, dims, n)
		} else {
			dict, err = rd.readSparseReal(sets, dims, n)
		}
		if err != nil {
			return nil, err
		}
		arr.Reals = dict
		arr.Sets = sets
		arr.Dimensions = dims

	case TypeRealList:
		dims, n, err := rd.readExtents()
		if err != nil {
			return nil, err
		}
		values, err := rd.readRealList(n)
		if err != nil {
			return nil, err
		}
		arr.RealList = values
		arr.Dimensions = dims

	case TypeInteger:
		sets, err := rd.readSetLabels()
		if err != nil {
			return nil, err
		}
		dims, n, err := rd.readExtents()
		if err != nil {
			return nil, err
		}
		if len(sets) == 0 && n > 0 {
			rd.logger.Debugf("header %q: declared zero defining sets, substituting a synthetic index set of size %d", header, n)
			sets = indexSet(n)
		}
		dict, err := rd.readIntegerArray(sets, dims, n, marker == "FULL")
		if err != nil {
			return nil, err
		}
		arr.Ints = dict
		arr.Sets = sets
		arr.Dimensions = dims

	default:
		return nil, invalidData("unknown array type code %q", typeCode)
	}

	if err := arr.validate(); err != nil {
		return nil, err
	}
	return arr, nil
}

// All drains the reader into a slice, for callers that want the whole
// file in memory (e.g. the solution assembler, which needs all metadata
// headers before it can cross-reference them).
func All(rd *Reader) ([]*HeaderArray, error) {
	var out []*HeaderArray
	for {
		arr, err := rd.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, arr)
	}
}
