package irisgwas

import (
	"fmt"
	"math"
	"slices"
	"sort"

	fet "github.com/glycerine/golang-fisher-exact"
)

// AdditiveTest names the additive-genotype row of a regression table.
const AdditiveTest = "ADD"

// AdditiveOnly keeps the additive-genotype coefficient row per variant
// from a regression table, discarding intercept and covariate rows.
func AdditiveOnly(ents []AssocEntry) []AssocEntry {
	var out []AssocEntry
	for _, ent := range ents {
		if ent.Test == AdditiveTest {
			out = append(out, ent)
		}
	}
	return out
}

// DropDegenerate excludes rows whose p-value is undefined or sits at
// exactly 0 or 1, as from non-convergent or separated regressions, and
// counts the exclusions.
func DropDegenerate(ents []AssocEntry) (kept []AssocEntry, dropped int) {
	for _, ent := range ents {
		if !usableP(ent.P) {
			dropped++
			continue
		}
		kept = append(kept, ent)
	}
	return kept, dropped
}

// SortByP sorts ascending by p-value; ties keep input order.
func SortByP(ents []AssocEntry) []AssocEntry {
	out := slices.Clone(ents)
	sort.SliceStable(out, func(i, j int) bool { return out[i].P < out[j].P })
	return out
}

// Bonferroni multiplies p by the number of tests performed, capping at 1.
func Bonferroni(p float64, ntests int) float64 {
	adj := p * float64(ntests)
	if adj > 1 {
		return 1
	}
	return adj
}

// AssocResult augments a tested variant with its adjusted p-value.
type AssocResult struct {
	AssocEntry
	PAdj float64
}

// Adjust applies Bonferroni correction over ntests total comparisons.
// ntests is the full tested-variant count, which can exceed len(ents)
// when degenerate rows were excluded after testing.
func Adjust(ents []AssocEntry, ntests int) []AssocResult {
	out := make([]AssocResult, 0, len(ents))
	for _, ent := range ents {
		out = append(out, AssocResult{AssocEntry: ent, PAdj: Bonferroni(ent.P, ntests)})
	}
	return out
}

// RankVariants is the shared tail of both test modes: degenerate rows
// out, stable sort by significance, Bonferroni over the full tested count.
func RankVariants(ents []AssocEntry, ntests int) (ranked []AssocResult, degenerate int) {
	kept, degenerate := DropDegenerate(ents)
	return Adjust(SortByP(kept), ntests), degenerate
}

// Significant keeps variants whose raw p-value is below thresh, the
// genome-wide convention; the Bonferroni-adjusted value rides along for
// reporting.
func Significant(ents []AssocResult, thresh float64) []AssocResult {
	var out []AssocResult
	for _, ent := range ents {
		if ent.P < thresh {
			out = append(out, ent)
		}
	}
	return out
}

// AlleleCounts is the 2x2 allele-by-phenotype table for one variant.
type AlleleCounts struct {
	CaseA1 int
	CaseA2 int
	CtrlA1 int
	CtrlA2 int
}

// VariantCounts pairs a variant's identity with its contingency table.
type VariantCounts struct {
	Chr    string
	SNP    string
	BP     int64
	A1     string
	Counts AlleleCounts
}

// CountAlleles tallies A1 and A2 allele counts from additive dosages
// split by binary phenotype. Dosage is the per-sample A1 allele count
// (0, 1, 2); negative dosages mark missing genotypes and are skipped.
func CountAlleles(dosages []int, codes []int64) (AlleleCounts, error) {
	var c AlleleCounts
	if len(dosages) != len(codes) {
		return c, fmt.Errorf("CountAlleles: %v dosages vs %v phenotypes: %w", len(dosages), len(codes), JoinError)
	}
	for i, d := range dosages {
		if d < 0 {
			continue
		}
		if d > 2 {
			return c, fmt.Errorf("CountAlleles: dosage %v at sample %v: %w", d, i, ParseError)
		}
		switch codes[i] {
		case 1:
			c.CaseA1 += d
			c.CaseA2 += 2 - d
		case 2:
			c.CtrlA1 += d
			c.CtrlA2 += 2 - d
		default:
			return c, fmt.Errorf("CountAlleles: phenotype code %v at sample %v: %w", codes[i], i, JoinError)
		}
	}
	return c, nil
}

// ExactTest runs the two-sided exact test on one variant's allele table.
// It makes no model assumptions and stays valid at low counts.
func ExactTest(v VariantCounts) AssocEntry {
	_, _, _, twop := fet.FisherExactTest(v.Counts.CaseA1, v.Counts.CaseA2, v.Counts.CtrlA1, v.Counts.CtrlA2)
	return AssocEntry{Chr: v.Chr, SNP: v.SNP, BP: v.BP, A1: v.A1, Stat: math.NaN(), P: twop}
}

func ExactTests(vs []VariantCounts) []AssocEntry {
	out := make([]AssocEntry, 0, len(vs))
	for _, v := range vs {
		out = append(out, ExactTest(v))
	}
	return out
}
