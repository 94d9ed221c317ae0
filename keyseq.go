// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"strings"
)

// KeySequence is an immutable ordered tuple of keys addressing one logical
// entry of a HeaderArray. Its canonical string form is "[k0][k1]...[kn-1]";
// the empty sequence stringifies to the empty string.
type KeySequence []string

// String renders the canonical "[k0][k1]..." form.
func (k KeySequence) String() string {
	if len(k) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range k {
		b.WriteByte('[')
		b.WriteString(part)
		b.WriteByte(']')
	}
	return b.String()
}

// Clone returns a defensive copy of k.
func (k KeySequence) Clone() KeySequence {
	out := make(KeySequence, len(k))
	copy(out, k)
	return out
}

// ParseKeySequence parses the canonical "[a][b][c]" form. It additionally
// accepts "*" and "][" as separators and trims surrounding brackets, per
// the key-string format in spec §6.
func ParseKeySequence(s string) KeySequence {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return KeySequence{}
	}

	replacer := strings.NewReplacer("][", "*", "]", "*", "[", "*")
	normalized := replacer.Replace(s)

	parts := strings.Split(normalized, "*")
	out := make(KeySequence, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// compareStrings is the case-insensitive ordinal comparator used to break
// ties between key-sequence components.
func compareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CompareForward compares two key sequences component by component,
// left to right.
func CompareForward(a, b KeySequence) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareStrings(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// CompareReverse compares two key sequences with their components taken in
// reverse order, so the last component is the primary sort key: the same
// axis priority as SequenceDictionary.ExpandedKeys (last set slowest,
// mirroring Fortran column-major storage). ExpandedKeys itself walks each
// set in its declared element order and does not call this comparator.
func CompareReverse(a, b KeySequence) int {
	na, nb := len(a), len(b)
	n := na
	if nb < n {
		n = nb
	}
	for i := 0; i < n; i++ {
		ia, ib := na-1-i, nb-1-i
		if c := compareStrings(a[ia], b[ib]); c != 0 {
			return c
		}
	}
	return na - nb
}

// byForward and byReverse adapt KeySequence slices to sort.Interface under
// the two orderings above.
type byForward []KeySequence

func (s byForward) Len() int           { return len(s) }
func (s byForward) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s byForward) Less(i, j int) bool { return CompareForward(s[i], s[j]) < 0 }

type byReverse []KeySequence

func (s byReverse) Len() int           { return len(s) }
func (s byReverse) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s byReverse) Less(i, j int) bool { return CompareReverse(s[i], s[j]) < 0 }
