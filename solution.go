// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gtap-toolkit/har/internal/log"
)

// SolutionOptions configures AssembleSolution.
type SolutionOptions struct {
	// Logger receives a Warn entry for each command-file shock or
	// exogenous definition that names a variable outside the assembled
	// set. Defaults to a filtered stdout logger at LevelError.
	Logger *log.Helper
}

// VariableKind classifies an SL4 variable's solution method (spec §4.10
// step 3). The on-wire encoding of VCS0 is not fixed by the
// specification beyond "an enum"; this reader infers it from the
// standard GEMPACK English labels, matched case-insensitively by
// prefix, defaulting to endogenous for anything unrecognized.
type VariableKind int

const (
	KindEndogenous VariableKind = iota
	KindExogenous
	KindBacksolved
	KindCondensed
)

func parseVariableKind(s string) VariableKind {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(lower, "exo"):
		return KindExogenous
	case strings.HasPrefix(lower, "back"):
		return KindBacksolved
	case strings.HasPrefix(lower, "cond"):
		return KindCondensed
	default:
		return KindEndogenous
	}
}

// solutionSet is one entry of the SL4 "sets" metadata block (STNM/STLB/
// STTP/SSZ/STEL), adjusted to 0-based offsets.
type solutionSet struct {
	Name          string
	Description   string
	Intertemporal bool
	Elements      []string
}

// SolutionVariable is one entry of the SL4 variable catalog (VCNM/VCL0/
// VCLE/VCT0/VCS0), with its defining sets resolved via VCSP/VCNI/VCSN.
type SolutionVariable struct {
	Index       int
	Name        string
	Description string
	Label       string
	ChangeType  string
	Kind        VariableKind
	Sets        []SetDef
}

// findHeader returns the first array in arrays whose trimmed header
// matches name, or nil.
func findHeader(arrays []*HeaderArray, name string) *HeaderArray {
	for _, a := range arrays {
		if strings.TrimSpace(a.Header) == name {
			return a
		}
	}
	return nil
}

// flatStrings returns arr's values in on-wire (positional) order: the
// order produced by ExpandedKeys, which for the single synthetic
// positional set substituted for a zero-set array (see indexSet) is
// simply ascending index order.
func flatStrings(arr *HeaderArray) []string {
	if arr == nil || arr.Strings == nil {
		return nil
	}
	var out []string
	for k := range arr.Strings.ExpandedKeys() {
		out = append(out, arr.Strings.Get(k))
	}
	return out
}

func flatInts(arr *HeaderArray) []int {
	if arr == nil || arr.Ints == nil {
		return nil
	}
	var out []int
	for k := range arr.Ints.ExpandedKeys() {
		out = append(out, int(arr.Ints.Get(k)))
	}
	return out
}

func flatReals(arr *HeaderArray) []float32 {
	if arr == nil || arr.Reals == nil {
		return nil
	}
	var out []float32
	for k := range arr.Reals.ExpandedKeys() {
		out = append(out, arr.Reals.Get(k))
	}
	return out
}

// buildSolutionSets implements spec §4.10 step 1: STEL is a flat
// concatenation, set i occupying the slice [offset_i, offset_i+SSZ[i]).
func buildSolutionSets(arrays []*HeaderArray) ([]solutionSet, error) {
	names := flatStrings(findHeader(arrays, "STNM"))
	descs := flatStrings(findHeader(arrays, "STLB"))
	kinds := flatStrings(findHeader(arrays, "STTP"))
	sizes := flatInts(findHeader(arrays, "SSZ"))
	elems := flatStrings(findHeader(arrays, "STEL"))

	sets := make([]solutionSet, len(names))
	offset := 0
	for i, name := range names {
		sz := 0
		if i < len(sizes) {
			sz = sizes[i]
		}
		if offset+sz > len(elems) {
			return nil, invalidData("STEL too short for set %q: need %d more elements at offset %d", name, sz, offset)
		}
		desc := ""
		if i < len(descs) {
			desc = descs[i]
		}
		intertemporal := false
		if i < len(kinds) {
			intertemporal = strings.EqualFold(kinds[i], "i")
		}
		sets[i] = solutionSet{
			Name:          name,
			Description:   desc,
			Intertemporal: intertemporal,
			Elements:      append([]string(nil), elems[offset:offset+sz]...),
		}
		offset += sz
	}
	return sets, nil
}

// checkVarsMatchesVCNM cross-checks the VARS naming array against VCNM,
// the variable-catalog name vector (spec §4.10, §7: "VARS[i] != VCNM[i]"
// is the named DataValidationError example for this assembler).
func checkVarsMatchesVCNM(vars, vcnm []string) error {
	if len(vars) != len(vcnm) {
		return &DataValidationError{Field: "VARS", Expected: len(vcnm), Actual: len(vars)}
	}
	for i := range vars {
		if !strings.EqualFold(strings.TrimSpace(vars[i]), strings.TrimSpace(vcnm[i])) {
			return &DataValidationError{
				Field:    fmt.Sprintf("VARS[%d]", i),
				Expected: vcnm[i],
				Actual:   vars[i],
			}
		}
	}
	return nil
}

// buildSolutionVariables implements spec §4.10 steps 2-3: each
// variable's defining sets are resolved through VCSP (1-based offset
// into VCSN), VCNI (set count), and VCSN (1-based indices into the
// set catalog).
func buildSolutionVariables(arrays []*HeaderArray, sets []solutionSet) ([]SolutionVariable, error) {
	names := flatStrings(findHeader(arrays, "VCNM"))
	if vars := findHeader(arrays, "VARS"); vars != nil {
		if err := checkVarsMatchesVCNM(flatStrings(vars), names); err != nil {
			return nil, err
		}
	}
	descs := flatStrings(findHeader(arrays, "VCL0"))
	labels := flatStrings(findHeader(arrays, "VCLE"))
	changeTypes := flatStrings(findHeader(arrays, "VCT0"))
	kinds := flatStrings(findHeader(arrays, "VCS0"))
	vcsp := flatInts(findHeader(arrays, "VCSP"))
	vcni := flatInts(findHeader(arrays, "VCNI"))
	vcsn := flatInts(findHeader(arrays, "VCSN"))

	vars := make([]SolutionVariable, len(names))
	for i, name := range names {
		v := SolutionVariable{Index: i, Name: name}
		if i < len(descs) {
			v.Description = descs[i]
		}
		if i < len(labels) {
			v.Label = labels[i]
		}
		if i < len(changeTypes) {
			v.ChangeType = changeTypes[i]
		}
		if i < len(kinds) {
			v.Kind = parseVariableKind(kinds[i])
		}

		if i < len(vcsp) && i < len(vcni) {
			off := vcsp[i] - 1
			count := vcni[i]
			v.Sets = make([]SetDef, 0, count)
			for j := 0; j < count; j++ {
				pos := off + j
				if pos < 0 || pos >= len(vcsn) {
					return nil, invalidData("VCSN index out of range for variable %q at position %d", name, pos)
				}
				setIdx := vcsn[pos] - 1
				if setIdx < 0 || setIdx >= len(sets) {
					return nil, invalidData("variable %q references unknown set index %d", name, setIdx)
				}
				v.Sets = append(v.Sets, SetDef{Name: sets[setIdx].Name, Elements: sets[setIdx].Elements})
			}
		}
		vars[i] = v
	}
	return vars, nil
}

// AssembleSolution reconstructs the back-solved and condensed variables
// of an SL4 solution file (spec §4.10), applying any shock and
// exogenous-variable overrides declared in its embedded CMDF command
// file. arrays must be every HeaderArray of the source file, in any
// order (obtained e.g. via har.All). opts may be nil.
func AssembleSolution(arrays []*HeaderArray, opts *SolutionOptions) ([]*HeaderArray, error) {
	logger := log.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}

	sets, err := buildSolutionSets(arrays)
	if err != nil {
		return nil, err
	}
	vars, err := buildSolutionVariables(arrays, sets)
	if err != nil {
		return nil, err
	}

	var cmdFile *CommandFile
	if cmdf := findHeader(arrays, "CMDF"); cmdf != nil {
		cmdFile, err = ParseCommandFile(cmdf)
		if err != nil {
			return nil, err
		}
	} else {
		cmdFile = &CommandFile{}
	}
	warnUnmatchedCommands(logger, vars, cmdFile)

	pcum := flatInts(findHeader(arrays, "PCUM"))
	cmnd := flatInts(findHeader(arrays, "CMND"))
	cums := flatReals(findHeader(arrays, "CUMS"))

	var selected []SolutionVariable
	for _, v := range vars {
		if v.Kind == KindBacksolved || v.Kind == KindCondensed {
			selected = append(selected, v)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Index < selected[j].Index })

	results := make([]*HeaderArray, len(selected))
	g := new(errgroup.Group)
	for pos, v := range selected {
		pos, v := pos, v
		g.Go(func() error {
			arr, err := reconstructVariable(v, pcum, cmnd, cums, cmdFile)
			if err != nil {
				return err
			}
			results[pos] = arr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// warnUnmatchedCommands logs a Warn entry for every shock or exogenous
// definition in cmdFile that names a variable absent from the catalog:
// such a definition has no effect on the assembled output.
func warnUnmatchedCommands(logger *log.Helper, vars []SolutionVariable, cmdFile *CommandFile) {
	known := func(name string) bool {
		for _, v := range vars {
			if strings.EqualFold(v.Name, name) {
				return true
			}
		}
		return false
	}
	for _, def := range cmdFile.Shocks {
		if !known(def.Name) {
			logger.Warnf("shock definition for unknown variable %q has no effect", def.Name)
		}
	}
	for _, def := range cmdFile.Exogenous {
		if !known(def.Name) {
			logger.Warnf("exogenous definition for unknown variable %q has no effect", def.Name)
		}
	}
}

// reconstructVariable implements spec §4.10 steps 5-7 for one variable:
// slice its cumulative-results block, apply command-file overrides, and
// emit the resulting HeaderArray.
func reconstructVariable(v SolutionVariable, pcum, cmnd []int, cums []float32, cmdFile *CommandFile) (*HeaderArray, error) {
	size := 1
	for _, s := range v.Sets {
		size *= len(s.Elements)
	}

	values := make([]float32, size)
	if v.Index < len(pcum) && v.Index < len(cmnd) {
		start := pcum[v.Index] - 1
		length := cmnd[v.Index]
		if start != -1 {
			if start < 0 || start+length > len(cums) {
				return nil, invalidData("CUMS slice out of range for variable %q: start=%d len=%d total=%d",
					v.Name, start, length, len(cums))
			}
			copy(values, cums[start:start+length])
		}
	}

	dict := NewSequenceDictionary[float32](v.Sets)
	i := 0
	for key := range dict.ExpandedKeys() {
		if i < len(values) {
			dict.Insert(key, values[i])
		}
		i++
	}

	for _, def := range cmdFile.Exogenous {
		if !strings.EqualFold(def.Name, v.Name) {
			continue
		}
		dict.Insert(KeySequence(def.Indexes), 0)
	}
	for _, def := range cmdFile.Shocks {
		if !strings.EqualFold(def.Name, v.Name) || len(def.Values) == 0 {
			continue
		}
		dict.Insert(KeySequence(def.Indexes), float32(def.Values[0]))
	}

	return &HeaderArray{
		Header:      paddedHeader(v.Name),
		Description: v.Description,
		Type:        TypeReal,
		Dimensions:  dimsFromSets(v.Sets),
		Sets:        v.Sets,
		Reals:       dict,
	}, nil
}
