package irisgwas

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

func Zscores(fs stats.Float64Data) ([]float64, error) {
	mean, e := stats.Mean(fs)
	if e != nil {
		return nil, e
	}
	sd, e := stats.StandardDeviation(fs)
	if e != nil {
		return nil, e
	}
	if sd == 0 {
		return nil, fmt.Errorf("Zscores: zero standard deviation over %v values", len(fs))
	}
	out := make([]float64, 0, len(fs))
	for _, f := range fs {
		out = append(out, (f-mean)/sd)
	}
	return out, nil
}
