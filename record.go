// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"encoding/binary"
	"io"
)

// padding is the 4-byte ASCII blank that precedes many record payloads.
var padding = [4]byte{' ', ' ', ' ', ' '}

// recordReader reads Fortran unformatted records from a forward byte
// stream: len:i32 | payload[len] | len:i32 (little-endian). It owns the
// underlying reader exclusively for the duration of a read session; HAR
// has no seekable random access (spec Non-goals).
type recordReader struct {
	r io.Reader
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: r}
}

// readRecord reads one full record and returns its payload. A clean
// end-of-stream (zero bytes read at the start of a record) is reported as
// io.EOF; any other short read is ErrUnexpectedEOF.
func (rr *recordReader) readRecord() ([]byte, error) {
	var lenBuf [4]byte
	n, err := io.ReadFull(rr.r, lenBuf[:])
	if n == 0 && err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, ErrUnexpectedEOF
	}

	length := int32(binary.LittleEndian.Uint32(lenBuf[:]))
	if length < 0 {
		return nil, invalidData("negative record length %d", length)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(rr.r, payload); err != nil {
			return nil, ErrUnexpectedEOF
		}
	}

	var trailerBuf [4]byte
	if _, err := io.ReadFull(rr.r, trailerBuf[:]); err != nil {
		return nil, ErrUnexpectedEOF
	}
	trailer := int32(binary.LittleEndian.Uint32(trailerBuf[:]))

	if trailer != length {
		return nil, invalidData(
			"initiating and terminating lengths do not match: %d != %d", length, trailer)
	}
	return payload, nil
}

// readPaddedRecord reads a record and strips its leading 4-byte ASCII
// blank padding, failing if the padding is absent or wrong.
func (rr *recordReader) readPaddedRecord() ([]byte, error) {
	payload, err := rr.readRecord()
	if err != nil {
		return nil, err
	}
	if len(payload) < 4 || [4]byte(payload[:4]) != padding {
		return nil, invalidData("failed to find expected padding")
	}
	return payload[4:], nil
}

// recordWriter emits Fortran unformatted records to a forward byte stream.
type recordWriter struct {
	w io.Writer
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{w: w}
}

func (rw *recordWriter) writeRecord(payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := rw.w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := rw.w.Write(payload); err != nil {
			return err
		}
	}
	_, err := rw.w.Write(lenBuf[:])
	return err
}

// writePaddedRecord writes payload prefixed with the standard 4-byte blank.
func (rw *recordWriter) writePaddedRecord(payload []byte) error {
	buf := make([]byte, 0, 4+len(payload))
	buf = append(buf, padding[:]...)
	buf = append(buf, payload...)
	return rw.writeRecord(buf)
}
