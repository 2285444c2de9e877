package irisgwas

import (
	"slices"
	"testing"
)

func TestVariantFilterCmd(t *testing.T) {
	c := DefaultConfig()
	cmd := c.VariantFilterCmd("data/raw", "out/excluded_samples.txt", "out/qc2")
	want := []string{
		"--bfile", "data/raw",
		"--remove", "out/excluded_samples.txt",
		"--geno", "0.75",
		"--hwe", "1e-05",
		"--maf", "0.01",
		"--make-bed",
		"--out", "out/qc2",
	}
	if !slices.Equal(cmd.Args, want) {
		t.Errorf("got %v, want %v", cmd.Args, want)
	}
	if cmd.Exe != "plink" {
		t.Errorf("got exe %v, want plink", cmd.Exe)
	}

	noRemove := c.VariantFilterCmd("data/raw", "", "out/qc2")
	if slices.Contains(noRemove.Args, "--remove") {
		t.Errorf("got %v, want no --remove", noRemove.Args)
	}
}

func TestGenomeCmd(t *testing.T) {
	c := DefaultConfig()
	cmd := c.GenomeCmd("data/raw", "out/qc1")
	want := []string{"--bfile", "data/raw", "--genome", "--min", "0.185", "--out", "out/qc1"}
	if !slices.Equal(cmd.Args, want) {
		t.Errorf("got %v, want %v", cmd.Args, want)
	}
}

func TestAssocCmds(t *testing.T) {
	c := DefaultConfig()
	exact := c.ExactAssocCmd("out/qc2", "out/pheno.txt", "out/assoc")
	want := []string{"--bfile", "out/qc2", "--pheno", "out/pheno.txt", "--assoc", "fisher", "--out", "out/assoc"}
	if !slices.Equal(exact.Args, want) {
		t.Errorf("exact: got %v, want %v", exact.Args, want)
	}

	logistic := c.LogisticAssocCmd("out/qc2", "out/pheno.txt", "out/covars.txt", "out/assoc")
	want = []string{"--bfile", "out/qc2", "--pheno", "out/pheno.txt", "--logistic", "--covar", "out/covars.txt", "--out", "out/assoc"}
	if !slices.Equal(logistic.Args, want) {
		t.Errorf("logistic: got %v, want %v", logistic.Args, want)
	}
}

func TestPCACmd(t *testing.T) {
	c := DefaultConfig()
	cmd := c.PCACmd("out/qc2", 20, "out/qc2")
	want := []string{"--bfile", "out/qc2", "--pca", "20", "--out", "out/qc2"}
	if !slices.Equal(cmd.Args, want) {
		t.Errorf("got %v, want %v", cmd.Args, want)
	}
}
