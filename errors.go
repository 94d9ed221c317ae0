// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"errors"
	"fmt"
	"io"
)

// ErrUnexpectedEOF is returned when the input stream ends in the middle of
// an array. A clean end-of-stream at an array boundary is reported as
// plain io.EOF instead.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF

// InvalidDataError reports a structurally malformed record: a frame-length
// mismatch, missing padding, an unknown type code, a label-count mismatch,
// or a dimensional-product disagreement.
type InvalidDataError struct {
	Detail string
}

func (e *InvalidDataError) Error() string {
	return "har: invalid data: " + e.Detail
}

func invalidData(format string, args ...interface{}) error {
	return &InvalidDataError{Detail: fmt.Sprintf(format, args...)}
}

// KeyNotFoundError reports a partial lookup against a prefix that is not
// itself a valid set-product.
type KeyNotFoundError struct {
	Key KeySequence
}

func (e *KeyNotFoundError) Error() string {
	return "har: key not found: " + e.Key.String()
}

// DataValidationError reports a solution-assembler cross-check failure,
// e.g. VARS[i] != VCNM[i].
type DataValidationError struct {
	Field    string
	Expected interface{}
	Actual   interface{}
}

func (e *DataValidationError) Error() string {
	return fmt.Sprintf("har: data validation failed for %s: expected %v, got %v",
		e.Field, e.Expected, e.Actual)
}

// SetMismatchError reports that a set name occurs more than once in a HAR
// file with differing element lists. It is a warning, not a fatal error:
// the validator collects these rather than aborting.
type SetMismatchError struct {
	SetName   string
	FirstSeen []string
	Found     []string
}

func (e *SetMismatchError) Error() string {
	return fmt.Sprintf("har: set %q redefined with different elements: first seen %v, found %v",
		e.SetName, e.FirstSeen, e.Found)
}

// Compile-time checks that each typed error above implements error;
// errors.As matches them through their pointer types.
var (
	_ error = (*InvalidDataError)(nil)
	_ error = (*KeyNotFoundError)(nil)
	_ error = (*DataValidationError)(nil)
	_ error = (*SetMismatchError)(nil)
)

// IsInvalidData reports whether err is (or wraps) an *InvalidDataError.
func IsInvalidData(err error) bool {
	var target *InvalidDataError
	return errors.As(err, &target)
}
