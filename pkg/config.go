package irisgwas

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

var ConfigError = errors.New("configuration error")

// Policies for resolving which member of a related pair to drop.
const (
	DropFirst      = "first"
	DropHigherMiss = "higher-missing"
)

// Config collects every threshold used by the pipeline. Defaults follow
// the study design; all of them can be overridden from a TOML file.
type Config struct {
	HetSDThreshold   float64 `toml:"het_sd_threshold"`
	IBDThreshold     float64 `toml:"ibd_threshold"`
	RelatedDrop      string  `toml:"related_drop"`
	GenoMissingMax   float64 `toml:"geno_missing_max"`
	HWEPvalue        float64 `toml:"hwe_p"`
	MAFMin           float64 `toml:"maf_min"`
	PhenoSubstring   string  `toml:"pheno_substring"`
	PhenoFoldCase    bool    `toml:"pheno_fold_case"`
	PCVarianceCutoff float64 `toml:"pc_variance_cutoff"`
	SigThreshold     float64 `toml:"significance_threshold"`
	ProximityWindows []int64 `toml:"proximity_windows"`
	NullDraws        int     `toml:"null_draws"`
	RNGSeed          uint64  `toml:"rng_seed"`
	PlinkExe         string  `toml:"plink_exe"`
}

func DefaultConfig() Config {
	return Config{
		HetSDThreshold:   3,
		IBDThreshold:     0.185,
		RelatedDrop:      DropFirst,
		GenoMissingMax:   0.75,
		HWEPvalue:        1e-5,
		MAFMin:           0.01,
		PhenoSubstring:   "brown",
		PhenoFoldCase:    false,
		PCVarianceCutoff: 50,
		SigThreshold:     5e-8,
		ProximityWindows: []int64{1000, 10000},
		NullDraws:        10000000,
		RNGSeed:          1,
		PlinkExe:         "plink",
	}
}

// ReadConfig decodes a TOML file over the defaults.
func ReadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if _, e := toml.DecodeFile(path, &c); e != nil {
		return c, fmt.Errorf("ReadConfig %v: %w", path, e)
	}
	return c, nil
}

func checkProb(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%v %v outside [0, 1]: %w", name, p, ConfigError)
	}
	return nil
}

// Validate fails before any computation begins if a threshold is outside
// its valid domain.
func (c Config) Validate() error {
	if c.HetSDThreshold <= 0 {
		return fmt.Errorf("het_sd_threshold %v <= 0: %w", c.HetSDThreshold, ConfigError)
	}
	if e := checkProb("ibd_threshold", c.IBDThreshold); e != nil {
		return e
	}
	if c.RelatedDrop != DropFirst && c.RelatedDrop != DropHigherMiss {
		return fmt.Errorf("related_drop %q not in {%q, %q}: %w", c.RelatedDrop, DropFirst, DropHigherMiss, ConfigError)
	}
	if e := checkProb("geno_missing_max", c.GenoMissingMax); e != nil {
		return e
	}
	if e := checkProb("hwe_p", c.HWEPvalue); e != nil {
		return e
	}
	if c.MAFMin < 0 || c.MAFMin > 0.5 {
		return fmt.Errorf("maf_min %v outside [0, 0.5]: %w", c.MAFMin, ConfigError)
	}
	if c.PhenoSubstring == "" {
		return fmt.Errorf("pheno_substring empty: %w", ConfigError)
	}
	if c.PCVarianceCutoff <= 0 || c.PCVarianceCutoff > 100 {
		return fmt.Errorf("pc_variance_cutoff %v outside (0, 100]: %w", c.PCVarianceCutoff, ConfigError)
	}
	if c.SigThreshold <= 0 || c.SigThreshold > 1 {
		return fmt.Errorf("significance_threshold %v outside (0, 1]: %w", c.SigThreshold, ConfigError)
	}
	if len(c.ProximityWindows) < 1 {
		return fmt.Errorf("no proximity windows: %w", ConfigError)
	}
	for _, w := range c.ProximityWindows {
		if w < 0 {
			return fmt.Errorf("proximity window %v < 0: %w", w, ConfigError)
		}
	}
	if c.NullDraws < 1 {
		return fmt.Errorf("null_draws %v < 1: %w", c.NullDraws, ConfigError)
	}
	return nil
}
