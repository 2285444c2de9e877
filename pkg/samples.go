package irisgwas

import (
	"fmt"
	"io"
	"math"

	"github.com/jgbaldwinbrown/csvh"
)

// Sample joins the missingness and heterozygosity rows for one individual.
type Sample struct {
	SampleID
	NMiss       int64
	NGeno       int64
	FMiss       float64
	ObsHom      float64
	NNonmissing float64
	Het         float64
}

// JoinSamples pairs missingness and heterozygosity rows on (FID, IID) and
// derives the heterozygosity rate (NM - Hom) / NM. Rows with no partner in
// the other table, or with no nonmissing genotypes, are dropped and counted.
func JoinSamples(miss []MissEntry, hets []HetEntry) (samples []Sample, dropped int) {
	missByID := make(map[SampleID]MissEntry, len(miss))
	for _, m := range miss {
		missByID[SampleID{m.FID, m.IID}] = m
	}
	for _, h := range hets {
		id := SampleID{h.FID, h.IID}
		m, ok := missByID[id]
		if !ok {
			dropped++
			continue
		}
		delete(missByID, id)
		if h.NNonmissing <= 0 {
			dropped++
			continue
		}
		samples = append(samples, Sample{
			SampleID:    id,
			NMiss:       m.NMiss,
			NGeno:       m.NGeno,
			FMiss:       m.FMiss,
			ObsHom:      h.ObsHom,
			NNonmissing: h.NNonmissing,
			Het:         (h.NNonmissing - h.ObsHom) / h.NNonmissing,
		})
	}
	dropped += len(missByID)
	return samples, dropped
}

// HetOutliers flags samples whose heterozygosity rate deviates from the
// population mean by more than sdThresh standard deviations. The rule is
// global: multi-modal batches are not sub-grouped.
func HetOutliers(samples []Sample, sdThresh float64) ([]SampleID, error) {
	hets := make([]float64, 0, len(samples))
	for _, s := range samples {
		hets = append(hets, s.Het)
	}
	zs, e := Zscores(hets)
	if e != nil {
		return nil, fmt.Errorf("HetOutliers: %w", e)
	}
	var out []SampleID
	for i, z := range zs {
		if math.Abs(z) > sdThresh {
			out = append(out, samples[i].SampleID)
		}
	}
	return out, nil
}

// FMissByID indexes missingness fractions for the related-pair drop policy.
func FMissByID(samples []Sample) map[SampleID]float64 {
	out := make(map[SampleID]float64, len(samples))
	for _, s := range samples {
		out[s.SampleID] = s.FMiss
	}
	return out
}

// RelatedExclusions collects one member of every pair sharing more of the
// genome than thresh. DropFirst takes the first member of each pair,
// matching the order the relatedness table reports; DropHigherMiss drops
// whichever member has the higher missingness fraction.
func RelatedExclusions(pairs []RelPair, thresh float64, policy string, fmiss map[SampleID]float64) []SampleID {
	seen := make(map[SampleID]struct{})
	var out []SampleID
	for _, p := range pairs {
		if !(p.PiHat > thresh) {
			continue
		}
		id1 := SampleID{p.FID1, p.IID1}
		id2 := SampleID{p.FID2, p.IID2}
		drop := id1
		if policy == DropHigherMiss && fmiss[id2] > fmiss[id1] {
			drop = id2
		}
		if _, ok := seen[drop]; ok {
			continue
		}
		seen[drop] = struct{}{}
		out = append(out, drop)
	}
	return out
}

// UniqIDs merges exclusion lists, keeping first-seen order.
func UniqIDs(lists ...[]SampleID) []SampleID {
	seen := make(map[SampleID]struct{})
	var out []SampleID
	for _, l := range lists {
		for _, id := range l {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func WriteExclusions(w io.Writer, ids ...SampleID) (n int, err error) {
	for _, id := range ids {
		nwrit, e := fmt.Fprintf(w, "%v\t%v\n", id.FID, id.IID)
		n += nwrit
		if e != nil {
			return n, e
		}
	}
	return n, nil
}

func WriteExclusionsPath(path string, ids ...SampleID) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()
	_, err = WriteExclusions(w, ids...)
	return err
}
