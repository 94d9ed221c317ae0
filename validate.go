// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"sort"

	"github.com/gtap-toolkit/har/internal/log"
)

// ValidatorOptions configures a Validator.
type ValidatorOptions struct {
	// Logger receives a Warn entry per set mismatch detected by Add.
	// Defaults to a filtered stdout logger at LevelError.
	Logger *log.Helper
}

// Validator cross-checks the defining sets declared by a collection of
// HeaderArrays: two arrays that both declare a set of the same name must
// agree on its element list and ordering (spec §4.11). Mismatches are
// collected rather than aborting at the first one, mirroring the
// teacher's batch-anomaly accumulation over a single scan.
type Validator struct {
	seen     map[string][]string
	mismatch []*SetMismatchError
	logger   *log.Helper
}

// NewValidator returns an empty Validator. opts may be nil.
func NewValidator(opts *ValidatorOptions) *Validator {
	v := &Validator{seen: map[string][]string{}, logger: log.Default()}
	if opts != nil && opts.Logger != nil {
		v.logger = opts.Logger
	}
	return v
}

// Add folds one array's defining sets into the validator's running view,
// logging a Warn entry for each new mismatch found.
func (v *Validator) Add(arr *HeaderArray) {
	for _, s := range arr.Sets {
		first, ok := v.seen[s.Name]
		if !ok {
			v.seen[s.Name] = append([]string(nil), s.Elements...)
			continue
		}
		if !equalStrings(first, s.Elements) {
			mismatch := &SetMismatchError{
				SetName:   s.Name,
				FirstSeen: first,
				Found:     s.Elements,
			}
			v.mismatch = append(v.mismatch, mismatch)
			v.logger.Warnf("%s", mismatch.Error())
		}
	}
}

// AddAll folds every array in arrays into the validator.
func (v *Validator) AddAll(arrays []*HeaderArray) {
	for _, arr := range arrays {
		v.Add(arr)
	}
}

// Consistent reports whether every set name seen so far has agreed on
// its elements across all arrays that declare it.
func (v *Validator) Consistent() bool {
	return len(v.mismatch) == 0
}

// Report returns every mismatch found so far, in first-detected order.
func (v *Validator) Report() []*SetMismatchError {
	out := make([]*SetMismatchError, len(v.mismatch))
	copy(out, v.mismatch)
	return out
}

// SetNames returns the names of every set observed, sorted.
func (v *Validator) SetNames() []string {
	names := make([]string, 0, len(v.seen))
	for name := range v.seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
