package irisgwas

import (
	"fmt"
	"os/exec"
	"strconv"
)

// PlinkCmd is one invocation of the external genotype tool. The builders
// are pure so argument lists can be checked without running anything;
// Run shells out.
type PlinkCmd struct {
	Exe  string
	Args []string
}

func plinkBase(exe, bfile, out string, args ...string) PlinkCmd {
	all := append([]string{"--bfile", bfile}, args...)
	all = append(all, "--out", out)
	return PlinkCmd{Exe: exe, Args: all}
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// MissingnessCmd computes the per-sample missingness table.
func (c Config) MissingnessCmd(bfile, out string) PlinkCmd {
	return plinkBase(c.PlinkExe, bfile, out, "--missing")
}

// HetCmd computes the per-sample homozygosity table.
func (c Config) HetCmd(bfile, out string) PlinkCmd {
	return plinkBase(c.PlinkExe, bfile, out, "--het")
}

// GenomeCmd computes pairwise genome sharing, keeping only pairs over
// the relatedness threshold.
func (c Config) GenomeCmd(bfile, out string) PlinkCmd {
	return plinkBase(c.PlinkExe, bfile, out, "--genome", "--min", ftoa(c.IBDThreshold))
}

// VariantFilterCmd removes excluded samples and applies the call-rate,
// Hardy-Weinberg, and minor-allele-frequency floors, writing a filtered
// genotype set. The floors themselves are computed by the external tool;
// the pipeline only consumes the resulting tables.
func (c Config) VariantFilterCmd(bfile, removePath, out string) PlinkCmd {
	var args []string
	if removePath != "" {
		args = append(args, "--remove", removePath)
	}
	args = append(args,
		"--geno", ftoa(c.GenoMissingMax),
		"--hwe", ftoa(c.HWEPvalue),
		"--maf", ftoa(c.MAFMin),
		"--make-bed",
	)
	return plinkBase(c.PlinkExe, bfile, out, args...)
}

// PCACmd computes npcs principal components.
func (c Config) PCACmd(bfile string, npcs int, out string) PlinkCmd {
	return plinkBase(c.PlinkExe, bfile, out, "--pca", strconv.Itoa(npcs))
}

// ExactAssocCmd runs the per-variant exact association test.
func (c Config) ExactAssocCmd(bfile, phenoPath, out string) PlinkCmd {
	return plinkBase(c.PlinkExe, bfile, out, "--pheno", phenoPath, "--assoc", "fisher")
}

// LogisticAssocCmd runs the covariate-adjusted regression with the
// selected PC scores as covariates.
func (c Config) LogisticAssocCmd(bfile, phenoPath, covarPath, out string) PlinkCmd {
	return plinkBase(c.PlinkExe, bfile, out, "--pheno", phenoPath, "--logistic", "--covar", covarPath)
}

// Run executes the invocation, surfacing the tool's own output on failure.
func (p PlinkCmd) Run() error {
	cmd := exec.Command(p.Exe, p.Args...)
	out, e := cmd.CombinedOutput()
	if e != nil {
		return fmt.Errorf("%v %v: %s: %w", p.Exe, p.Args, out, e)
	}
	return nil
}
