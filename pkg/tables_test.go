package irisgwas

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/jgbaldwinbrown/iterh"
)

func TestParseMiss(t *testing.T) {
	in := ` FID  IID MISS_PHENO   N_MISS   N_GENO   F_MISS
   f1   i1          N       10      100      0.1
   f1   i2          N        0      100        0
`
	ents, e := iterh.CollectWithError(ParseMiss(strings.NewReader(in)))
	if e != nil {
		t.Fatal(e)
	}
	if len(ents) != 2 {
		t.Fatalf("got %v rows, want 2", len(ents))
	}
	want := MissEntry{FID: "f1", IID: "i1", MissPheno: "N", NMiss: 10, NGeno: 100, FMiss: 0.1}
	if ents[0] != want {
		t.Errorf("got %+v, want %+v", ents[0], want)
	}
}

func TestParseMissMalformed(t *testing.T) {
	in := "FID IID\nf1 i1 N 10\n"
	_, e := iterh.CollectWithError(ParseMiss(strings.NewReader(in)))
	if !errors.Is(e, ParseError) {
		t.Errorf("got %v, want ParseError", e)
	}
}

func TestParseHet(t *testing.T) {
	in := ` FID  IID      O(HOM)      E(HOM)       N(NM)           F
   f1   i1          70       65.09         100      0.1405
`
	ents, e := iterh.CollectWithError(ParseHet(strings.NewReader(in)))
	if e != nil {
		t.Fatal(e)
	}
	if len(ents) != 1 || ents[0].ObsHom != 70 || ents[0].NNonmissing != 100 {
		t.Errorf("got %+v", ents)
	}
}

func TestParseRelPairs(t *testing.T) {
	in := ` FID1 IID1 FID2 IID2 RT EZ Z0 Z1 Z2 PI_HAT PHE DST PPC RATIO
 f1 a f1 b OT 0 0.0 0.5 0.5 0.75 -1 0.8 0.9 2.0
`
	ents, e := iterh.CollectWithError(ParseRelPairs(strings.NewReader(in)))
	if e != nil {
		t.Fatal(e)
	}
	want := RelPair{FID1: "f1", IID1: "a", FID2: "f1", IID2: "b", PiHat: 0.75}
	if len(ents) != 1 || ents[0] != want {
		t.Errorf("got %+v, want %+v", ents, want)
	}
}

func TestParseLogisticAssoc(t *testing.T) {
	in := ` CHR SNP BP A1 TEST NMISS OR STAT P
 1 rs1 1500 A ADD 100 1.5 5.2 1e-9
 1 rs1 1500 A COV1 100 1.1 1.0 0.3
 1 rs2 2500 A ADD 100 NA NA NA
`
	ents, e := iterh.CollectWithError(ParseLogisticAssoc(strings.NewReader(in)))
	if e != nil {
		t.Fatal(e)
	}
	if len(ents) != 3 {
		t.Fatalf("got %v rows, want 3", len(ents))
	}
	if ents[0].Test != "ADD" || ents[0].P != 1e-9 || ents[0].BP != 1500 {
		t.Errorf("got %+v", ents[0])
	}
	if !math.IsNaN(ents[2].P) {
		t.Errorf("NA p-value parsed as %v, want NaN", ents[2].P)
	}
}

func TestParseExactAssoc(t *testing.T) {
	in := ` CHR SNP BP A1 F_A F_U A2 P
 1 rs1 1500 A 0.5 0.1 G 1e-9
`
	ents, e := iterh.CollectWithError(ParseExactAssoc(strings.NewReader(in)))
	if e != nil {
		t.Fatal(e)
	}
	if len(ents) != 1 || ents[0].SNP != "rs1" || ents[0].P != 1e-9 {
		t.Errorf("got %+v", ents)
	}
	if ents[0].Test != "" {
		t.Errorf("exact rows carry no TEST label, got %q", ents[0].Test)
	}
}

func TestParseEigen(t *testing.T) {
	vals, e := ParseEigenvals(strings.NewReader("7\n4\n\n3\n"))
	if e != nil {
		t.Fatal(e)
	}
	if len(vals) != 3 || vals[0] != 7 || vals[2] != 3 {
		t.Errorf("got %v", vals)
	}
	if _, e := ParseEigenvals(strings.NewReader("7\nx\n")); !errors.Is(e, ParseError) {
		t.Errorf("got %v, want ParseError", e)
	}

	vecs, e := iterh.CollectWithError(ParseEigenvecs(strings.NewReader("f1 i1 0.1 -0.2\nf1 i2 0.3 0.4\n")))
	if e != nil {
		t.Fatal(e)
	}
	if len(vecs) != 2 || len(vecs[0].PCs) != 2 || vecs[0].PCs[1] != -0.2 {
		t.Errorf("got %+v", vecs)
	}
}

func TestParsePhenos(t *testing.T) {
	in := "IID,eye_color\ni1,brown\ni2,blue\n"
	ents, e := iterh.CollectWithError(ParsePhenos(strings.NewReader(in), true))
	if e != nil {
		t.Fatal(e)
	}
	if len(ents) != 2 || ents[0].IID != "i1" || ents[0].Category != "brown" {
		t.Errorf("got %+v", ents)
	}
}
