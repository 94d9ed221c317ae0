// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"regexp"
	"strconv"
	"strings"
)

// ExogenousDefinition is one "make <name> exogenous" assignment parsed
// from a command file: the named variable's value at the given index
// tuple is removed from the cumulative-results reconstruction (spec
// §4.10 step 6).
type ExogenousDefinition struct {
	Name    string
	Indexes []string
	Values  []float64
}

// ShockDefinition is one imposed-change assignment parsed from a command
// file: the named variable's value at the given index tuple is written
// directly, overriding whatever the cumulative-results slice held.
type ShockDefinition struct {
	Name    string
	Indexes []string
	Values  []float64
}

// CommandFile holds the shock and exogenous-assignment records
// extracted from an embedded CMDF array. The command-file grammar
// itself is out of scope (spec §4.12); this reader depends only on the
// contract that each line yields a (name, indexes, values) record.
type CommandFile struct {
	Exogenous []ExogenousDefinition
	Shocks    []ShockDefinition
	lines     []string
}

// Lines returns every raw command-file line, in file order. This is a
// supplemental escape hatch for callers that need text the structured
// Exogenous/Shocks records don't capture (comments, unrecognized
// directives).
func (c *CommandFile) Lines() []string {
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

var cmdfLinePattern = regexp.MustCompile(
	`(?i)^\s*(shock|exogenous)\s+([A-Za-z_][A-Za-z0-9_]*)\s*(?:\(([^)]*)\))?\s*(?:=\s*([-+0-9.eE]+))?`)

// ParseCommandFile extracts shock and exogenous-assignment records from
// arr, which must be the CMDF string array embedded in an SL4 file
// (spec §4.12). Lines that don't match the recognized directive forms
// are kept in Lines but contribute no structured record.
func ParseCommandFile(arr *HeaderArray) (*CommandFile, error) {
	if arr.Type != TypeCharacter || arr.Strings == nil {
		return nil, invalidData("CMDF array %q is not a string array", arr.Header)
	}

	cf := &CommandFile{}
	for _, line := range arr.Strings.Entries() {
		cf.lines = append(cf.lines, line)
	}

	for _, line := range cf.lines {
		m := cmdfLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind := strings.ToLower(m[1])
		name := m[2]
		indexes := parseCmdfIndexes(m[3])
		var values []float64
		if m[4] != "" {
			v, err := strconv.ParseFloat(m[4], 64)
			if err == nil {
				values = []float64{v}
			}
		}

		switch kind {
		case "shock":
			cf.Shocks = append(cf.Shocks, ShockDefinition{Name: name, Indexes: indexes, Values: values})
		case "exogenous":
			cf.Exogenous = append(cf.Exogenous, ExogenousDefinition{Name: name, Indexes: indexes, Values: values})
		}
	}
	return cf, nil
}

func parseCmdfIndexes(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
