package irisgwas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if e := DefaultConfig().Validate(); e != nil {
		t.Fatal(e)
	}
}

func TestValidateRejects(t *testing.T) {
	for _, mod := range []struct {
		name string
		f    func(*Config)
	}{
		{"zero het sd", func(c *Config) { c.HetSDThreshold = 0 }},
		{"ibd over 1", func(c *Config) { c.IBDThreshold = 1.5 }},
		{"bad drop policy", func(c *Config) { c.RelatedDrop = "coinflip" }},
		{"negative geno", func(c *Config) { c.GenoMissingMax = -0.1 }},
		{"hwe over 1", func(c *Config) { c.HWEPvalue = 2 }},
		{"maf over half", func(c *Config) { c.MAFMin = 0.6 }},
		{"empty substring", func(c *Config) { c.PhenoSubstring = "" }},
		{"cutoff over 100", func(c *Config) { c.PCVarianceCutoff = 101 }},
		{"zero significance", func(c *Config) { c.SigThreshold = 0 }},
		{"no windows", func(c *Config) { c.ProximityWindows = nil }},
		{"negative window", func(c *Config) { c.ProximityWindows = []int64{1000, -1} }},
		{"zero draws", func(c *Config) { c.NullDraws = 0 }},
	} {
		c := DefaultConfig()
		mod.f(&c)
		e := c.Validate()
		if e == nil {
			t.Errorf("%v: no error", mod.name)
			continue
		}
		if !errors.Is(e, ConfigError) {
			t.Errorf("%v: error %v is not a ConfigError", mod.name, e)
		}
	}
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	conf := `
het_sd_threshold = 4.0
ibd_threshold = 0.2
pheno_substring = "blue"
proximity_windows = [500, 50000]
rng_seed = 42
`
	if e := os.WriteFile(path, []byte(conf), 0644); e != nil {
		t.Fatal(e)
	}
	c, e := ReadConfig(path)
	if e != nil {
		t.Fatal(e)
	}
	if c.HetSDThreshold != 4 || c.IBDThreshold != 0.2 || c.PhenoSubstring != "blue" || c.RNGSeed != 42 {
		t.Errorf("got %+v", c)
	}
	if len(c.ProximityWindows) != 2 || c.ProximityWindows[1] != 50000 {
		t.Errorf("got windows %v", c.ProximityWindows)
	}
	// Unset keys keep their defaults.
	if c.SigThreshold != 5e-8 {
		t.Errorf("got significance %v, want default 5e-8", c.SigThreshold)
	}
	if e := c.Validate(); e != nil {
		t.Fatal(e)
	}
}
