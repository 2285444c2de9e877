package irisgwas

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"github.com/jgbaldwinbrown/csvh"
)

// RefLocus is a previously published locus from the reference study.
type RefLocus struct {
	RS   string  `csv:"RS"`
	Chr  string  `csv:"Chr"`
	Pos  int64   `csv:"Pos"`
	Gene string  `csv:"Nearest.Gene"`
	P    float64 `csv:"P"`
}

// ReadRefLoci reads the static reference locus CSV.
func ReadRefLoci(path string) ([]RefLocus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	var loci []RefLocus
	if err := gocsv.UnmarshalFile(f, &loci); err != nil {
		return nil, pfx.Err(err)
	}
	return loci, nil
}

// LocusMatch is one reference locus lying within the window of a
// significant variant, plus the physical distance between the two.
type LocusMatch struct {
	RefLocus
	Distance int64
}

// AnnotatedVariant is a significant variant with its replication
// evidence: every reference locus on the same chromosome within the
// window, in reference-table order.
type AnnotatedVariant struct {
	AssocResult
	Window  int64
	Matches []LocusMatch
}

// FindCloseGenes matches each significant variant against reference loci
// on the same chromosome (exact chromosome-name equality) within
// [pos-window, pos+window]. Variants with no match are left out: no match
// is read as no evidence of replication, not as unknown annotation.
func FindCloseGenes(sig []AssocResult, ref []RefLocus, window int64) ([]AnnotatedVariant, error) {
	if window < 0 {
		return nil, fmt.Errorf("FindCloseGenes: window %v < 0: %w", window, ConfigError)
	}
	byChr := make(map[string][]RefLocus)
	for _, r := range ref {
		byChr[r.Chr] = append(byChr[r.Chr], r)
	}
	var out []AnnotatedVariant
	for _, v := range sig {
		var matches []LocusMatch
		for _, r := range byChr[v.Chr] {
			d := r.Pos - v.BP
			if d < 0 {
				d = -d
			}
			if d <= window {
				matches = append(matches, LocusMatch{RefLocus: r, Distance: d})
			}
		}
		if len(matches) == 0 {
			continue
		}
		out = append(out, AnnotatedVariant{AssocResult: v, Window: window, Matches: matches})
	}
	return out, nil
}

// WriteAnnotated writes the annotated significant-locus report as TSV.
// Set-valued reference fields are comma-joined per variant.
func WriteAnnotated(w io.Writer, anns ...AnnotatedVariant) (n int, err error) {
	nwrit, e := fmt.Fprintf(w, "CHR\tSNP\tBP\tP\tP_ADJ\tWINDOW\tREF_RS\tREF_POS\tREF_GENES\tREF_P\n")
	n += nwrit
	if e != nil {
		return n, e
	}
	for _, a := range anns {
		rss := make([]string, 0, len(a.Matches))
		poss := make([]string, 0, len(a.Matches))
		genes := make([]string, 0, len(a.Matches))
		ps := make([]string, 0, len(a.Matches))
		for _, m := range a.Matches {
			rss = append(rss, m.RS)
			poss = append(poss, fmt.Sprint(m.Pos))
			genes = append(genes, m.Gene)
			ps = append(ps, fmt.Sprint(m.P))
		}
		nwrit, e := fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
			a.Chr, a.SNP, a.BP, a.P, a.PAdj, a.Window,
			strings.Join(rss, ","), strings.Join(poss, ","),
			strings.Join(genes, ","), strings.Join(ps, ","),
		)
		n += nwrit
		if e != nil {
			return n, e
		}
	}
	return n, nil
}

func WriteAnnotatedPath(path string, anns ...AnnotatedVariant) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()
	_, err = WriteAnnotated(w, anns...)
	return err
}
