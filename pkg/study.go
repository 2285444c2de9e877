package irisgwas

import (
	"flag"
	"log"
	"path/filepath"
)

// StudyFlags drive a whole study from a raw genotype fileset.
type StudyFlags struct {
	Config string
	BFile  string
	Pheno  string
	Ref    string
	OutDir string
	NPCs   int
}

// RunStudy drives the external genotype tool through the full QC and
// association sequence, then hands the resulting tables to Pipeline:
// sample QC stats, outlier exclusion, variant filtering, PCA, both
// association runs, and the statistical report.
func RunStudy() {
	var f StudyFlags
	flag.StringVar(&f.Config, "config", "", "Path to TOML config (defaults used if empty)")
	flag.StringVar(&f.BFile, "bfile", "", "Genotype fileset prefix")
	flag.StringVar(&f.Pheno, "pheno", "", "Phenotype category CSV")
	flag.StringVar(&f.Ref, "ref", "", "Reference locus CSV")
	flag.StringVar(&f.OutDir, "outdir", ".", "Directory for intermediate and output tables")
	flag.IntVar(&f.NPCs, "npcs", 20, "Principal components to compute")
	flag.Parse()
	if f.BFile == "" || f.Pheno == "" || f.Ref == "" {
		log.Fatal("missing -bfile, -pheno, or -ref")
	}

	cfg := DefaultConfig()
	if f.Config != "" {
		var e error
		if cfg, e = ReadConfig(f.Config); e != nil {
			log.Fatal(e)
		}
	}
	if e := cfg.Validate(); e != nil {
		log.Fatal(e)
	}

	qc1 := filepath.Join(f.OutDir, "qc1")
	for _, cmd := range []PlinkCmd{
		cfg.MissingnessCmd(f.BFile, qc1),
		cfg.HetCmd(f.BFile, qc1),
		cfg.GenomeCmd(f.BFile, qc1),
	} {
		if e := cmd.Run(); e != nil {
			log.Fatal(e)
		}
	}

	miss, e := ParseMissPath(qc1 + ".imiss")
	if e != nil {
		log.Fatal(e)
	}
	hets, e := ParseHetPath(qc1 + ".het")
	if e != nil {
		log.Fatal(e)
	}
	pairs, e := ParseRelPairsPath(qc1 + ".genome")
	if e != nil {
		log.Fatal(e)
	}

	samples, dropped := JoinSamples(miss, hets)
	log.Printf("%v samples joined; %v dropped\n", len(samples), dropped)
	hetOut, e := HetOutliers(samples, cfg.HetSDThreshold)
	if e != nil {
		log.Fatal(e)
	}
	related := RelatedExclusions(pairs, cfg.IBDThreshold, cfg.RelatedDrop, FMissByID(samples))
	removePath := filepath.Join(f.OutDir, "excluded_samples.txt")
	if e := WriteExclusionsPath(removePath, UniqIDs(hetOut, related)...); e != nil {
		log.Fatal(e)
	}

	qc2 := filepath.Join(f.OutDir, "qc2")
	if e := cfg.VariantFilterCmd(f.BFile, removePath, qc2).Run(); e != nil {
		log.Fatal(e)
	}
	if e := cfg.PCACmd(qc2, f.NPCs, qc2).Run(); e != nil {
		log.Fatal(e)
	}

	eigenvals, e := ParseEigenvalsPath(qc2 + ".eigenval")
	if e != nil {
		log.Fatal(e)
	}
	eigenvecs, e := ParseEigenvecsPath(qc2 + ".eigenvec")
	if e != nil {
		log.Fatal(e)
	}
	pcvars, e := VarianceExplained(eigenvals)
	if e != nil {
		log.Fatal(e)
	}
	npcs := SelectPCs(pcvars, cfg.PCVarianceCutoff)
	log.Printf("%v PCs reach %v%% cumulative variance\n", npcs, cfg.PCVarianceCutoff)

	covarPath := filepath.Join(f.OutDir, "covariates.txt")
	if e := WriteCovarsPath(covarPath, npcs, eigenvecs...); e != nil {
		log.Fatal(e)
	}

	phenos, e := ParsePhenosPath(f.Pheno, true)
	if e != nil {
		log.Fatal(e)
	}
	encoded := EncodePhenos(phenos, cfg.PhenoSubstring, cfg.PhenoFoldCase)
	phenotyped, phDropped := JoinPheno(samples, encoded)
	log.Printf("%v samples phenotyped; %v without phenotype dropped\n", len(phenotyped), phDropped)
	phenoPath := filepath.Join(f.OutDir, "plink_pheno.txt")
	if e := WritePlinkPhenoPath(phenoPath, phenotyped...); e != nil {
		log.Fatal(e)
	}

	assoc := filepath.Join(f.OutDir, "assoc")
	if e := cfg.ExactAssocCmd(qc2, phenoPath, assoc).Run(); e != nil {
		log.Fatal(e)
	}
	if e := cfg.LogisticAssocCmd(qc2, phenoPath, covarPath, assoc).Run(); e != nil {
		log.Fatal(e)
	}

	in, e := ReadInputs(Paths{
		Miss:     qc1 + ".imiss",
		Het:      qc1 + ".het",
		Genome:   qc1 + ".genome",
		Pheno:    f.Pheno,
		Eigenval: qc2 + ".eigenval",
		Eigenvec: qc2 + ".eigenvec",
		Adjusted: assoc + ".assoc.logistic",
		Exact:    assoc + ".assoc.fisher",
		RefLoci:  f.Ref,
	})
	if e != nil {
		log.Fatal(e)
	}

	r, e := Pipeline(cfg, in)
	if e != nil {
		log.Fatal(e)
	}
	log.Printf("lambda (adjusted) %v; lambda (exact) %v\n", r.LambdaAdjusted, r.LambdaExact)
	if e := WriteReport(f.OutDir, r); e != nil {
		log.Fatal(e)
	}
}
