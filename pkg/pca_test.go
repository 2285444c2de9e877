package irisgwas

import (
	"math"
	"strings"
	"testing"
)

func TestVarianceExplained(t *testing.T) {
	// Shares 35, 20, 15, 10, 20 percent.
	eigenvals := []float64{7, 4, 3, 2, 4}
	vars, e := VarianceExplained(eigenvals)
	if e != nil {
		t.Fatal(e)
	}
	wantVE := []float64{35, 20, 15, 10, 20}
	wantCum := []float64{35, 55, 70, 80, 100}
	for i, v := range vars {
		if math.Abs(v.VarianceExplained-wantVE[i]) > 1e-9 {
			t.Errorf("PC%v variance %v, want %v", v.PC, v.VarianceExplained, wantVE[i])
		}
		if math.Abs(v.Cumulative-wantCum[i]) > 1e-9 {
			t.Errorf("PC%v cumulative %v, want %v", v.PC, v.Cumulative, wantCum[i])
		}
		if i > 0 && v.Cumulative < vars[i-1].Cumulative {
			t.Errorf("cumulative variance decreased at PC%v", v.PC)
		}
	}
}

func TestVarianceExplainedBadInput(t *testing.T) {
	if _, e := VarianceExplained([]float64{1, -0.5}); e == nil {
		t.Error("no error on negative eigenvalue")
	}
	if _, e := VarianceExplained([]float64{0, 0}); e == nil {
		t.Error("no error on zero eigenvalue sum")
	}
}

func TestSelectPCs(t *testing.T) {
	vars, e := VarianceExplained([]float64{7, 4, 3, 2, 4})
	if e != nil {
		t.Fatal(e)
	}
	if got := SelectPCs(vars, 50); got != 2 {
		t.Errorf("50%% cutoff: got %v PCs, want 2", got)
	}
	if got := SelectPCs(vars, 35); got != 1 {
		t.Errorf("35%% cutoff: got %v PCs, want 1", got)
	}
	if got := SelectPCs(vars, 100); got != 5 {
		t.Errorf("100%% cutoff: got %v PCs, want 5", got)
	}
}

func TestCovariates(t *testing.T) {
	vecs := []EigenvecEntry{
		{FID: "f1", IID: "i1", PCs: []float64{0.1, 0.2, 0.3}},
		{FID: "f1", IID: "i2", PCs: []float64{-0.1, 0.4, 0.5}},
	}
	covs, e := Covariates(vecs, 2)
	if e != nil {
		t.Fatal(e)
	}
	got := covs[SampleID{"f1", "i1"}]
	if len(got) != 2 || got[0] != 0.1 || got[1] != 0.2 {
		t.Errorf("got %v, want [0.1 0.2]", got)
	}
	if _, e := Covariates(vecs, 4); e == nil {
		t.Error("no error when more PCs requested than scored")
	}
}

func TestWriteCovars(t *testing.T) {
	vecs := []EigenvecEntry{
		{FID: "f1", IID: "i1", PCs: []float64{0.1, 0.2, 0.3}},
	}
	var b strings.Builder
	if _, e := WriteCovars(&b, 2, vecs...); e != nil {
		t.Fatal(e)
	}
	want := "f1\ti1\t0.1\t0.2\n"
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}
}
