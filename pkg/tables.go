package irisgwas

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
	"github.com/jgbaldwinbrown/iterh"
)

var ParseError = errors.New("table parsing error")

var JoinError = errors.New("join integrity error")

type SampleID struct {
	FID string
	IID string
}

// MissEntry is one row of a per-sample missingness table
// (FID IID MISS_PHENO N_MISS N_GENO F_MISS).
type MissEntry struct {
	FID       string
	IID       string
	MissPheno string
	NMiss     int64
	NGeno     int64
	FMiss     float64
}

// HetEntry is one row of a per-sample heterozygosity table
// (FID IID O(HOM) E(HOM) N(NM) F).
type HetEntry struct {
	FID         string
	IID         string
	ObsHom      float64
	ExpHom      float64
	NNonmissing float64
	F           float64
}

// RelPair is one pair from a relatedness table; only pairs over the
// sharing threshold are present in the input.
type RelPair struct {
	FID1  string
	IID1  string
	FID2  string
	IID2  string
	PiHat float64
}

type EigenvecEntry struct {
	FID string
	IID string
	PCs []float64
}

// AssocEntry is one tested variant. Test is empty for exact-test
// tables and names the model row (ADD, COV1, ...) for regression tables.
type AssocEntry struct {
	Chr  string
	SNP  string
	BP   int64
	A1   string
	Test string
	Stat float64
	P    float64
}

func scanFloatNA(s string) (float64, error) {
	if s == "NA" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseTable reads a whitespace-aligned table line by line, skipping an
// optional single header line and blank lines.
func parseTable[T any](r io.Reader, header bool, parse func([]string) (T, error)) iter.Seq2[T, error] {
	return func(y func(T, error) bool) {
		var zero T
		s := bufio.NewScanner(r)
		first := true
		for s.Scan() {
			fields := strings.Fields(s.Text())
			if len(fields) == 0 {
				continue
			}
			skip := first && header
			first = false
			if skip {
				continue
			}
			ent, e := parse(fields)
			if e != nil {
				if !y(zero, fmt.Errorf("line %q: %w", s.Text(), e)) {
					return
				}
				continue
			}
			if !y(ent, nil) {
				return
			}
		}
		if e := s.Err(); e != nil {
			y(zero, e)
		}
	}
}

func collectTablePath[T any](path string, it func(io.Reader) iter.Seq2[T, error]) ([]T, error) {
	r, e := csvh.OpenMaybeGz(path)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	ents, e := iterh.CollectWithError(it(r))
	if e != nil {
		return nil, fmt.Errorf("%v: %w", path, e)
	}
	return ents, nil
}

func ParseMissEntry(line []string) (MissEntry, error) {
	if len(line) < 6 {
		return MissEntry{}, fmt.Errorf("missingness row has %v fields, want 6: %w", len(line), ParseError)
	}
	var m MissEntry
	_, e := csvh.Scan(line[:6], &m.FID, &m.IID, &m.MissPheno, &m.NMiss, &m.NGeno, &m.FMiss)
	return m, e
}

func ParseMiss(r io.Reader) iter.Seq2[MissEntry, error] {
	return parseTable(r, true, ParseMissEntry)
}

func ParseMissPath(path string) ([]MissEntry, error) {
	return collectTablePath(path, ParseMiss)
}

func ParseHetEntry(line []string) (HetEntry, error) {
	if len(line) < 6 {
		return HetEntry{}, fmt.Errorf("heterozygosity row has %v fields, want 6: %w", len(line), ParseError)
	}
	var h HetEntry
	_, e := csvh.Scan(line[:6], &h.FID, &h.IID, &h.ObsHom, &h.ExpHom, &h.NNonmissing, &h.F)
	return h, e
}

func ParseHet(r io.Reader) iter.Seq2[HetEntry, error] {
	return parseTable(r, true, ParseHetEntry)
}

func ParseHetPath(path string) ([]HetEntry, error) {
	return collectTablePath(path, ParseHet)
}

func ParseRelPairEntry(line []string) (RelPair, error) {
	if len(line) < 10 {
		return RelPair{}, fmt.Errorf("relatedness row has %v fields, want >= 10: %w", len(line), ParseError)
	}
	var p RelPair
	if _, e := csvh.Scan(line[:4], &p.FID1, &p.IID1, &p.FID2, &p.IID2); e != nil {
		return RelPair{}, e
	}
	pihat, e := strconv.ParseFloat(line[9], 64)
	if e != nil {
		return RelPair{}, fmt.Errorf("PI_HAT %q: %w", line[9], ParseError)
	}
	p.PiHat = pihat
	return p, nil
}

func ParseRelPairs(r io.Reader) iter.Seq2[RelPair, error] {
	return parseTable(r, true, ParseRelPairEntry)
}

func ParseRelPairsPath(path string) ([]RelPair, error) {
	return collectTablePath(path, ParseRelPairs)
}

func ParseEigenvecEntry(line []string) (EigenvecEntry, error) {
	if len(line) < 3 {
		return EigenvecEntry{}, fmt.Errorf("eigenvector row has %v fields, want >= 3: %w", len(line), ParseError)
	}
	v := EigenvecEntry{FID: line[0], IID: line[1], PCs: make([]float64, 0, len(line)-2)}
	for _, f := range line[2:] {
		pc, e := strconv.ParseFloat(f, 64)
		if e != nil {
			return EigenvecEntry{}, fmt.Errorf("PC score %q: %w", f, ParseError)
		}
		v.PCs = append(v.PCs, pc)
	}
	return v, nil
}

func ParseEigenvecs(r io.Reader) iter.Seq2[EigenvecEntry, error] {
	return parseTable(r, false, ParseEigenvecEntry)
}

func ParseEigenvecsPath(path string) ([]EigenvecEntry, error) {
	return collectTablePath(path, ParseEigenvecs)
}

// ParseEigenvals reads one eigenvalue per line, in PC order.
func ParseEigenvals(r io.Reader) ([]float64, error) {
	var out []float64
	s := bufio.NewScanner(r)
	for s.Scan() {
		f := strings.TrimSpace(s.Text())
		if f == "" {
			continue
		}
		v, e := strconv.ParseFloat(f, 64)
		if e != nil {
			return nil, fmt.Errorf("eigenvalue %q: %w", f, ParseError)
		}
		out = append(out, v)
	}
	if e := s.Err(); e != nil {
		return nil, e
	}
	return out, nil
}

func ParseEigenvalsPath(path string) ([]float64, error) {
	r, e := csvh.OpenMaybeGz(path)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	vals, e := ParseEigenvals(r)
	if e != nil {
		return nil, fmt.Errorf("%v: %w", path, e)
	}
	return vals, nil
}

// ParseExactAssocEntry parses one row of an exact-test association table
// (CHR SNP BP A1 F_A F_U A2 P).
func ParseExactAssocEntry(line []string) (AssocEntry, error) {
	if len(line) < 8 {
		return AssocEntry{}, fmt.Errorf("exact association row has %v fields, want 8: %w", len(line), ParseError)
	}
	var a AssocEntry
	if _, e := csvh.Scan(line[:4], &a.Chr, &a.SNP, &a.BP, &a.A1); e != nil {
		return AssocEntry{}, e
	}
	p, e := scanFloatNA(line[7])
	if e != nil {
		return AssocEntry{}, fmt.Errorf("P %q: %w", line[7], ParseError)
	}
	a.P = p
	a.Stat = math.NaN()
	return a, nil
}

func ParseExactAssoc(r io.Reader) iter.Seq2[AssocEntry, error] {
	return parseTable(r, true, ParseExactAssocEntry)
}

func ParseExactAssocPath(path string) ([]AssocEntry, error) {
	return collectTablePath(path, ParseExactAssoc)
}

// ParseLogisticAssocEntry parses one row of a covariate-adjusted
// regression table (CHR SNP BP A1 TEST NMISS OR STAT P).
func ParseLogisticAssocEntry(line []string) (AssocEntry, error) {
	if len(line) < 9 {
		return AssocEntry{}, fmt.Errorf("regression row has %v fields, want 9: %w", len(line), ParseError)
	}
	var a AssocEntry
	if _, e := csvh.Scan(line[:5], &a.Chr, &a.SNP, &a.BP, &a.A1, &a.Test); e != nil {
		return AssocEntry{}, e
	}
	stat, e := scanFloatNA(line[7])
	if e != nil {
		return AssocEntry{}, fmt.Errorf("STAT %q: %w", line[7], ParseError)
	}
	p, e := scanFloatNA(line[8])
	if e != nil {
		return AssocEntry{}, fmt.Errorf("P %q: %w", line[8], ParseError)
	}
	a.Stat = stat
	a.P = p
	return a, nil
}

func ParseLogisticAssoc(r io.Reader) iter.Seq2[AssocEntry, error] {
	return parseTable(r, true, ParseLogisticAssocEntry)
}

func ParseLogisticAssocPath(path string) ([]AssocEntry, error) {
	return collectTablePath(path, ParseLogisticAssoc)
}

// ParsePhenos reads a two-column CSV of IID and free-text category.
func ParsePhenos(r io.Reader, header bool) iter.Seq2[PhenoEntry, error] {
	return func(y func(PhenoEntry, error) bool) {
		hl := func(e error, l []string) error {
			return fmt.Errorf("ParsePhenos: line %v; %w", l, e)
		}
		cr := csvh.CsvIn(r)

		if header {
			if _, e := cr.Read(); e != nil && e != io.EOF {
				y(PhenoEntry{}, hl(e, nil))
				return
			}
		}

		for l, e := cr.Read(); e != io.EOF; l, e = cr.Read() {
			if e != nil {
				if !y(PhenoEntry{}, hl(e, l)) {
					return
				}
				continue
			}
			if len(l) < 2 {
				if !y(PhenoEntry{}, hl(ParseError, l)) {
					return
				}
				continue
			}
			ent := PhenoEntry{IID: strings.TrimSpace(l[0]), Category: strings.TrimSpace(l[1])}
			if !y(ent, nil) {
				return
			}
		}
	}
}

func ParsePhenosPath(path string, header bool) ([]PhenoEntry, error) {
	r, e := csvh.OpenMaybeGz(path)
	if e != nil {
		return nil, e
	}
	defer r.Close()
	ents, e := iterh.CollectWithError(ParsePhenos(r, header))
	if e != nil {
		return nil, fmt.Errorf("%v: %w", path, e)
	}
	return ents, nil
}
