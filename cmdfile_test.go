// Copyright 2024 The HAR Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package har

import "testing"

func stringArrayOf(header string, lines []string) *HeaderArray {
	sets := indexSet(len(lines))
	dict := NewSequenceDictionary[string](sets)
	i := 0
	for k := range dict.ExpandedKeys() {
		if i < len(lines) {
			dict.Insert(k, lines[i])
		}
		i++
	}
	return &HeaderArray{
		Header: header, Type: TypeCharacter, Sets: sets,
		Dimensions: dimsFromSets(sets), Strings: dict,
	}
}

func TestParseCommandFile(t *testing.T) {
	lines := []string{
		`Shock p3cs("c1","r1") = 5.0;`,
		`Exogenous gdp("c2","r1");`,
		`a comment line nobody understands`,
	}
	arr := stringArrayOf("CMDF", lines)

	cf, err := ParseCommandFile(arr)
	if err != nil {
		t.Fatalf("ParseCommandFile failed: %v", err)
	}
	if len(cf.Lines()) != 3 {
		t.Fatalf("len(Lines()) = %d, want 3", len(cf.Lines()))
	}
	if len(cf.Shocks) != 1 {
		t.Fatalf("len(Shocks) = %d, want 1", len(cf.Shocks))
	}
	shock := cf.Shocks[0]
	if shock.Name != "p3cs" || len(shock.Indexes) != 2 || shock.Indexes[0] != "c1" || shock.Indexes[1] != "r1" {
		t.Errorf("unexpected shock record: %+v", shock)
	}
	if len(shock.Values) != 1 || shock.Values[0] != 5.0 {
		t.Errorf("shock values = %v, want [5.0]", shock.Values)
	}

	if len(cf.Exogenous) != 1 {
		t.Fatalf("len(Exogenous) = %d, want 1", len(cf.Exogenous))
	}
	exo := cf.Exogenous[0]
	if exo.Name != "gdp" || len(exo.Indexes) != 2 {
		t.Errorf("unexpected exogenous record: %+v", exo)
	}
}
