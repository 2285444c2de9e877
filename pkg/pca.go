package irisgwas

import (
	"fmt"
	"io"

	"github.com/jgbaldwinbrown/csvh"
)

// PCVariance is one principal component's share of total variance.
type PCVariance struct {
	PC                int
	Eigenvalue        float64
	VarianceExplained float64
	Cumulative        float64
}

// VarianceExplained converts ordered eigenvalues into percent variance
// explained and a running cumulative total. The cumulative column is
// non-decreasing across PC index.
func VarianceExplained(eigenvals []float64) ([]PCVariance, error) {
	var sum float64
	for i, v := range eigenvals {
		if v < 0 {
			return nil, fmt.Errorf("VarianceExplained: eigenvalue %v of PC%v negative: %w", v, i+1, ParseError)
		}
		sum += v
	}
	if !(sum > 0) {
		return nil, fmt.Errorf("VarianceExplained: eigenvalue sum %v not positive: %w", sum, ParseError)
	}
	out := make([]PCVariance, 0, len(eigenvals))
	cum := 0.0
	for i, v := range eigenvals {
		ve := v / sum * 100
		cum += ve
		out = append(out, PCVariance{PC: i + 1, Eigenvalue: v, VarianceExplained: ve, Cumulative: cum})
	}
	return out, nil
}

// SelectPCs returns the minimal count of leading components whose
// cumulative variance reaches cutoff, in percent. The count is a study
// design decision: the caller passes it on explicitly together with the
// cumulative table justifying it. If the cutoff is never reached, every
// component is selected.
func SelectPCs(vars []PCVariance, cutoff float64) int {
	for _, v := range vars {
		if v.Cumulative >= cutoff {
			return v.PC
		}
	}
	return len(vars)
}

// Covariates returns the leading npcs scores per sample for the
// association join.
func Covariates(vecs []EigenvecEntry, npcs int) (map[SampleID][]float64, error) {
	out := make(map[SampleID][]float64, len(vecs))
	for _, v := range vecs {
		if len(v.PCs) < npcs {
			return nil, fmt.Errorf("Covariates: sample %v %v has %v PCs, want >= %v: %w", v.FID, v.IID, len(v.PCs), npcs, ParseError)
		}
		out[SampleID{v.FID, v.IID}] = v.PCs[:npcs]
	}
	return out, nil
}

// WriteCovars writes FID, IID, and the leading npcs scores for the
// covariate-adjusted association run.
func WriteCovars(w io.Writer, npcs int, vecs ...EigenvecEntry) (n int, err error) {
	for _, v := range vecs {
		if len(v.PCs) < npcs {
			return n, fmt.Errorf("WriteCovars: sample %v %v has %v PCs, want >= %v: %w", v.FID, v.IID, len(v.PCs), npcs, ParseError)
		}
		nwrit, e := fmt.Fprintf(w, "%v\t%v", v.FID, v.IID)
		n += nwrit
		if e != nil {
			return n, e
		}
		for _, pc := range v.PCs[:npcs] {
			nwrit, e = fmt.Fprintf(w, "\t%v", pc)
			n += nwrit
			if e != nil {
				return n, e
			}
		}
		nwrit, e = fmt.Fprintf(w, "\n")
		n += nwrit
		if e != nil {
			return n, e
		}
	}
	return n, nil
}

func WriteCovarsPath(path string, npcs int, vecs ...EigenvecEntry) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()
	_, err = WriteCovars(w, npcs, vecs...)
	return err
}
