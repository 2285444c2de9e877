package irisgwas

import (
	"fmt"
	"io"
	"strings"

	"github.com/jgbaldwinbrown/csvh"
)

// PhenoEntry maps one individual to a free-text phenotype category and,
// once encoded, to the binary label (1 = target category, 2 = other).
type PhenoEntry struct {
	IID      string
	Category string
	Code     int64
}

// EncodePheno maps a category label to the binary phenotype: 1 if the
// label contains substr, else 2. Matching is case-sensitive unless
// foldCase is set.
func EncodePheno(category, substr string, foldCase bool) int64 {
	if foldCase {
		category = strings.ToLower(category)
		substr = strings.ToLower(substr)
	}
	if strings.Contains(category, substr) {
		return 1
	}
	return 2
}

func EncodePhenos(ents []PhenoEntry, substr string, foldCase bool) []PhenoEntry {
	out := make([]PhenoEntry, 0, len(ents))
	for _, p := range ents {
		p.Code = EncodePheno(p.Category, substr, foldCase)
		out = append(out, p)
	}
	return out
}

// AssocSample is one QC-passing sample with a defined binary phenotype.
type AssocSample struct {
	Sample
	Category string
	Code     int64
}

// JoinPheno attaches encoded phenotypes to samples by IID. Samples with no
// phenotype row are dropped and counted, so everything entering
// association testing carries a binary label.
func JoinPheno(samples []Sample, phenos []PhenoEntry) (out []AssocSample, dropped int) {
	byIID := make(map[string]PhenoEntry, len(phenos))
	for _, p := range phenos {
		byIID[p.IID] = p
	}
	for _, s := range samples {
		p, ok := byIID[s.IID]
		if !ok {
			dropped++
			continue
		}
		out = append(out, AssocSample{Sample: s, Category: p.Category, Code: p.Code})
	}
	return out, dropped
}

// WritePhenos emits IID, category, binary label, and FID; no header.
func WritePhenos(w io.Writer, samples ...AssocSample) (n int, err error) {
	for _, s := range samples {
		nwrit, e := fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", s.IID, s.Category, s.Code, s.FID)
		n += nwrit
		if e != nil {
			return n, e
		}
	}
	return n, nil
}

// WritePlinkPheno emits FID, IID, and the binary label in the layout the
// external tool's --pheno flag expects.
func WritePlinkPheno(w io.Writer, samples ...AssocSample) (n int, err error) {
	for _, s := range samples {
		nwrit, e := fmt.Fprintf(w, "%v\t%v\t%v\n", s.FID, s.IID, s.Code)
		n += nwrit
		if e != nil {
			return n, e
		}
	}
	return n, nil
}

func WritePlinkPhenoPath(path string, samples ...AssocSample) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()
	_, err = WritePlinkPheno(w, samples...)
	return err
}

func WritePhenosPath(path string, samples ...AssocSample) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()
	_, err = WritePhenos(w, samples...)
	return err
}
