package irisgwas

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

var chisq1 = distuv.ChiSquared{K: 1}

// NullMedian estimates the median 1-df chi-squared statistic from draws
// random samples under a fixed seed, so reruns reproduce the same factor.
func NullMedian(draws int, seed uint64) (float64, error) {
	if draws < 1 {
		return 0, fmt.Errorf("NullMedian: draws %v < 1: %w", draws, ConfigError)
	}
	dist := distuv.ChiSquared{K: 1, Src: rand.NewSource(seed)}
	xs := make([]float64, draws)
	for i := range xs {
		xs[i] = dist.Rand()
	}
	return stats.Median(xs)
}

// ObservedChisq is the upper-tail 1-df chi-squared quantile of p.
func ObservedChisq(p float64) float64 {
	return chisq1.Quantile(1 - p)
}

// ChisqUpperP is the upper-tail probability of a 1-df chi-squared value.
func ChisqUpperP(x float64) float64 {
	return chisq1.Survival(x)
}

// InflationResult reports the genomic-control correction of one p-value
// set. Lambda near 1 means no residual inflation; over 1 means residual
// confounding the covariates did not capture.
type InflationResult struct {
	Lambda     float64
	NullMedian float64
	Dropped    int
	Corrected  []float64
}

func usableP(p float64) bool {
	return p > 0 && p < 1
}

// GenomicControl computes the inflation factor over a tested p-value set
// and rescales each usable p-value by it. P-values of exactly 0 or 1, or
// undefined, are excluded from both the median and the corrected output,
// and counted.
func GenomicControl(ps []float64, nullMedian float64) (InflationResult, error) {
	var obs []float64
	dropped := 0
	for _, p := range ps {
		if !usableP(p) {
			dropped++
			continue
		}
		obs = append(obs, ObservedChisq(p))
	}
	if len(obs) == 0 {
		return InflationResult{}, fmt.Errorf("GenomicControl: no usable p-values; %v dropped", dropped)
	}
	med, e := stats.Median(obs)
	if e != nil {
		return InflationResult{}, e
	}
	lambda := med / nullMedian
	res := InflationResult{Lambda: lambda, NullMedian: nullMedian, Dropped: dropped}
	res.Corrected = make([]float64, 0, len(obs))
	for _, x := range obs {
		res.Corrected = append(res.Corrected, ChisqUpperP(x/lambda))
	}
	return res, nil
}

// GenomicControlAssoc applies the correction to a tested-variant table,
// returning the surviving variants with rescaled p-values in input order.
func GenomicControlAssoc(ents []AssocEntry, nullMedian float64) ([]AssocEntry, InflationResult, error) {
	var kept []AssocEntry
	ps := make([]float64, 0, len(ents))
	for _, ent := range ents {
		if !usableP(ent.P) {
			continue
		}
		kept = append(kept, ent)
		ps = append(ps, ent.P)
	}
	res, e := GenomicControl(ps, nullMedian)
	if e != nil {
		return nil, res, e
	}
	res.Dropped = len(ents) - len(kept)
	out := make([]AssocEntry, 0, len(kept))
	for i, ent := range kept {
		ent.P = res.Corrected[i]
		out = append(out, ent)
	}
	return out, res, nil
}
