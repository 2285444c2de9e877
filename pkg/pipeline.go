package irisgwas

import (
	"flag"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/jgbaldwinbrown/csvh"
)

// Paths collects the tabular inputs of one pipeline run.
type Paths struct {
	Miss     string
	Het      string
	Genome   string
	Pheno    string
	Eigenval string
	Eigenvec string
	Adjusted string
	Exact    string
	RefLoci  string
}

// Inputs holds every parsed input table. Stages treat these as
// immutable; each stage returns fresh output instead of reaching back.
type Inputs struct {
	Miss      []MissEntry
	Hets      []HetEntry
	Pairs     []RelPair
	Phenos    []PhenoEntry
	Eigenvals []float64
	Eigenvecs []EigenvecEntry
	Adjusted  []AssocEntry
	Exact     []AssocEntry
	Ref       []RefLocus
}

func ReadInputs(p Paths) (*Inputs, error) {
	var in Inputs
	var e error
	if in.Miss, e = ParseMissPath(p.Miss); e != nil {
		return nil, e
	}
	if in.Hets, e = ParseHetPath(p.Het); e != nil {
		return nil, e
	}
	if in.Pairs, e = ParseRelPairsPath(p.Genome); e != nil {
		return nil, e
	}
	if in.Phenos, e = ParsePhenosPath(p.Pheno, true); e != nil {
		return nil, e
	}
	if in.Eigenvals, e = ParseEigenvalsPath(p.Eigenval); e != nil {
		return nil, e
	}
	if p.Eigenvec != "" {
		if in.Eigenvecs, e = ParseEigenvecsPath(p.Eigenvec); e != nil {
			return nil, e
		}
	}
	if in.Adjusted, e = ParseLogisticAssocPath(p.Adjusted); e != nil {
		return nil, e
	}
	if p.Exact != "" {
		if in.Exact, e = ParseExactAssocPath(p.Exact); e != nil {
			return nil, e
		}
	}
	if in.Ref, e = ReadRefLoci(p.RefLoci); e != nil {
		return nil, e
	}
	return &in, nil
}

// StageCounts reports per-stage row exclusions so data loss stays
// visible rather than silent.
type StageCounts struct {
	SampleJoinDropped  int
	HetOutliers        int
	RelatedExcluded    int
	PhenoDropped       int
	ExactDegenerate    int
	AdjustedDegenerate int
	InflationDropped   int
}

// Report is the end state of one pipeline run over precomputed tables.
type Report struct {
	Counts              StageCounts
	HetExclusions       []SampleID
	RelatedExclusions   []SampleID
	Phenotyped          []AssocSample
	PCTable             []PCVariance
	SelectedPCs         int
	LambdaExact         float64
	LambdaAdjusted      float64
	SignificantExact    []AssocResult
	SignificantAdjusted []AssocResult
	Annotated           map[int64][]AnnotatedVariant
}

// Pipeline runs the statistical stages in order: sample outlier
// exclusion, phenotype encoding, PC selection, association ranking for
// both test modes, genomic-control correction, and locus annotation at
// each configured window. The first fatal error aborts the run, since
// every stage depends on the full output of its predecessor.
func Pipeline(cfg Config, in *Inputs) (*Report, error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	var r Report

	samples, dropped := JoinSamples(in.Miss, in.Hets)
	r.Counts.SampleJoinDropped = dropped

	hetOut, e := HetOutliers(samples, cfg.HetSDThreshold)
	if e != nil {
		return nil, e
	}
	r.HetExclusions = hetOut
	r.Counts.HetOutliers = len(hetOut)

	related := RelatedExclusions(in.Pairs, cfg.IBDThreshold, cfg.RelatedDrop, FMissByID(samples))
	r.RelatedExclusions = related
	r.Counts.RelatedExcluded = len(related)

	excluded := make(map[SampleID]struct{})
	for _, id := range UniqIDs(hetOut, related) {
		excluded[id] = struct{}{}
	}
	var qc []Sample
	for _, s := range samples {
		if _, ok := excluded[s.SampleID]; ok {
			continue
		}
		qc = append(qc, s)
	}

	encoded := EncodePhenos(in.Phenos, cfg.PhenoSubstring, cfg.PhenoFoldCase)
	phenotyped, phDropped := JoinPheno(qc, encoded)
	r.Phenotyped = phenotyped
	r.Counts.PhenoDropped = phDropped

	pcvars, e := VarianceExplained(in.Eigenvals)
	if e != nil {
		return nil, e
	}
	r.PCTable = pcvars
	r.SelectedPCs = SelectPCs(pcvars, cfg.PCVarianceCutoff)

	adj := AdditiveOnly(in.Adjusted)
	rankedAdj, degAdj := RankVariants(adj, len(adj))
	r.Counts.AdjustedDegenerate = degAdj
	r.SignificantAdjusted = Significant(rankedAdj, cfg.SigThreshold)

	if len(in.Exact) > 0 {
		rankedEx, degEx := RankVariants(in.Exact, len(in.Exact))
		r.Counts.ExactDegenerate = degEx
		r.SignificantExact = Significant(rankedEx, cfg.SigThreshold)
	}

	nullMed, e := NullMedian(cfg.NullDraws, cfg.RNGSeed)
	if e != nil {
		return nil, e
	}
	_, infAdj, e := GenomicControlAssoc(adj, nullMed)
	if e != nil {
		return nil, e
	}
	r.LambdaAdjusted = infAdj.Lambda
	r.Counts.InflationDropped = infAdj.Dropped
	if len(in.Exact) > 0 {
		_, infEx, e := GenomicControlAssoc(in.Exact, nullMed)
		if e != nil {
			return nil, e
		}
		r.LambdaExact = infEx.Lambda
		r.Counts.InflationDropped += infEx.Dropped
	}

	r.Annotated = make(map[int64][]AnnotatedVariant, len(cfg.ProximityWindows))
	for _, w := range cfg.ProximityWindows {
		ann, e := FindCloseGenes(r.SignificantAdjusted, in.Ref, w)
		if e != nil {
			return nil, e
		}
		r.Annotated[w] = ann
	}

	return &r, nil
}

// WriteSummary reports stage counts and headline statistics as TSV.
func WriteSummary(w io.Writer, r *Report) error {
	rows := []struct {
		key string
		val any
	}{
		{"sample_join_dropped", r.Counts.SampleJoinDropped},
		{"het_outliers", r.Counts.HetOutliers},
		{"related_excluded", r.Counts.RelatedExcluded},
		{"pheno_dropped", r.Counts.PhenoDropped},
		{"exact_degenerate", r.Counts.ExactDegenerate},
		{"adjusted_degenerate", r.Counts.AdjustedDegenerate},
		{"inflation_dropped", r.Counts.InflationDropped},
		{"selected_pcs", r.SelectedPCs},
		{"lambda_exact", r.LambdaExact},
		{"lambda_adjusted", r.LambdaAdjusted},
		{"significant_exact", len(r.SignificantExact)},
		{"significant_adjusted", len(r.SignificantAdjusted)},
	}
	for _, row := range rows {
		if _, e := fmt.Fprintf(w, "%v\t%v\n", row.key, row.val); e != nil {
			return e
		}
	}
	return nil
}

func WriteSummaryPath(path string, r *Report) (err error) {
	w, e := csvh.CreateMaybeGz(path)
	if e != nil {
		return e
	}
	defer func() { csvh.DeferE(&err, w.Close()) }()
	return WriteSummary(w, r)
}

// WriteReport writes every pipeline output table under dir.
func WriteReport(dir string, r *Report) error {
	if e := WriteExclusionsPath(filepath.Join(dir, "het_outliers.txt"), r.HetExclusions...); e != nil {
		return e
	}
	if e := WriteExclusionsPath(filepath.Join(dir, "related_excluded.txt"), r.RelatedExclusions...); e != nil {
		return e
	}
	merged := UniqIDs(r.HetExclusions, r.RelatedExclusions)
	if e := WriteExclusionsPath(filepath.Join(dir, "excluded_samples.txt"), merged...); e != nil {
		return e
	}
	if e := WritePhenosPath(filepath.Join(dir, "binary_pheno.txt"), r.Phenotyped...); e != nil {
		return e
	}
	for w, anns := range r.Annotated {
		path := filepath.Join(dir, fmt.Sprintf("annotated_w%v.tsv", w))
		if e := WriteAnnotatedPath(path, anns...); e != nil {
			return e
		}
	}
	return WriteSummaryPath(filepath.Join(dir, "summary.tsv"), r)
}

type PipelineFlags struct {
	Config string
	OutDir string
	Paths
}

func parsePipelineFlags() PipelineFlags {
	var f PipelineFlags
	flag.StringVar(&f.Config, "config", "", "Path to TOML config (defaults used if empty)")
	flag.StringVar(&f.OutDir, "outdir", ".", "Directory for output tables")
	flag.StringVar(&f.Miss, "miss", "", "Per-sample missingness table")
	flag.StringVar(&f.Het, "het", "", "Per-sample heterozygosity table")
	flag.StringVar(&f.Genome, "genome", "", "Pairwise relatedness table")
	flag.StringVar(&f.Pheno, "pheno", "", "Phenotype category CSV")
	flag.StringVar(&f.Eigenval, "eigenval", "", "Eigenvalue table, one per PC")
	flag.StringVar(&f.Eigenvec, "eigenvec", "", "Eigenvector table (optional)")
	flag.StringVar(&f.Adjusted, "assoc", "", "Covariate-adjusted association table")
	flag.StringVar(&f.Exact, "fisher", "", "Exact-test association table (optional)")
	flag.StringVar(&f.RefLoci, "ref", "", "Reference locus CSV")
	flag.Parse()

	for _, req := range []struct{ name, val string }{
		{"-miss", f.Miss}, {"-het", f.Het}, {"-genome", f.Genome},
		{"-pheno", f.Pheno}, {"-eigenval", f.Eigenval},
		{"-assoc", f.Adjusted}, {"-ref", f.RefLoci},
	} {
		if req.val == "" {
			log.Fatal("missing ", req.name)
		}
	}
	return f
}

// RunPipeline is the full command-line entry: parse every table, run the
// statistical pipeline, and write the report tables.
func RunPipeline() {
	f := parsePipelineFlags()

	cfg := DefaultConfig()
	if f.Config != "" {
		var e error
		if cfg, e = ReadConfig(f.Config); e != nil {
			log.Fatal(e)
		}
	}

	in, e := ReadInputs(f.Paths)
	if e != nil {
		log.Fatal(e)
	}

	r, e := Pipeline(cfg, in)
	if e != nil {
		log.Fatal(e)
	}

	log.Printf("selected %v PCs; lambda (adjusted) %v; lambda (exact) %v\n", r.SelectedPCs, r.LambdaAdjusted, r.LambdaExact)
	log.Printf("dropped rows: %+v\n", r.Counts)

	if e := WriteReport(f.OutDir, r); e != nil {
		log.Fatal(e)
	}
}

// RunSampleQC runs only the sample-level outlier stage and writes the
// exclusion lists.
func RunSampleQC() {
	var missPath, hetPath, genomePath, outDir, configPath string
	flag.StringVar(&configPath, "config", "", "Path to TOML config (defaults used if empty)")
	flag.StringVar(&missPath, "miss", "", "Per-sample missingness table")
	flag.StringVar(&hetPath, "het", "", "Per-sample heterozygosity table")
	flag.StringVar(&genomePath, "genome", "", "Pairwise relatedness table")
	flag.StringVar(&outDir, "outdir", ".", "Directory for output tables")
	flag.Parse()
	if missPath == "" || hetPath == "" || genomePath == "" {
		log.Fatal("missing -miss, -het, or -genome")
	}

	cfg := DefaultConfig()
	if configPath != "" {
		var e error
		if cfg, e = ReadConfig(configPath); e != nil {
			log.Fatal(e)
		}
	}
	if e := cfg.Validate(); e != nil {
		log.Fatal(e)
	}

	miss, e := ParseMissPath(missPath)
	if e != nil {
		log.Fatal(e)
	}
	hets, e := ParseHetPath(hetPath)
	if e != nil {
		log.Fatal(e)
	}
	pairs, e := ParseRelPairsPath(genomePath)
	if e != nil {
		log.Fatal(e)
	}

	samples, dropped := JoinSamples(miss, hets)
	hetOut, e := HetOutliers(samples, cfg.HetSDThreshold)
	if e != nil {
		log.Fatal(e)
	}
	related := RelatedExclusions(pairs, cfg.IBDThreshold, cfg.RelatedDrop, FMissByID(samples))

	log.Printf("%v samples joined (%v dropped); %v heterozygosity outliers; %v related excluded\n",
		len(samples), dropped, len(hetOut), len(related))

	if e := WriteExclusionsPath(filepath.Join(outDir, "het_outliers.txt"), hetOut...); e != nil {
		log.Fatal(e)
	}
	if e := WriteExclusionsPath(filepath.Join(outDir, "related_excluded.txt"), related...); e != nil {
		log.Fatal(e)
	}
	merged := UniqIDs(hetOut, related)
	if e := WriteExclusionsPath(filepath.Join(outDir, "excluded_samples.txt"), merged...); e != nil {
		log.Fatal(e)
	}
}

// RunAnnotate runs only the locus-annotation stage over an association
// table, at every configured window.
func RunAnnotate() {
	var assocPath, refPath, outDir, configPath string
	flag.StringVar(&configPath, "config", "", "Path to TOML config (defaults used if empty)")
	flag.StringVar(&assocPath, "assoc", "", "Covariate-adjusted association table")
	flag.StringVar(&refPath, "ref", "", "Reference locus CSV")
	flag.StringVar(&outDir, "outdir", ".", "Directory for output tables")
	flag.Parse()
	if assocPath == "" || refPath == "" {
		log.Fatal("missing -assoc or -ref")
	}

	cfg := DefaultConfig()
	if configPath != "" {
		var e error
		if cfg, e = ReadConfig(configPath); e != nil {
			log.Fatal(e)
		}
	}
	if e := cfg.Validate(); e != nil {
		log.Fatal(e)
	}

	ents, e := ParseLogisticAssocPath(assocPath)
	if e != nil {
		log.Fatal(e)
	}
	ref, e := ReadRefLoci(refPath)
	if e != nil {
		log.Fatal(e)
	}

	adj := AdditiveOnly(ents)
	ranked, degenerate := RankVariants(adj, len(adj))
	sig := Significant(ranked, cfg.SigThreshold)
	log.Printf("%v additive rows; %v degenerate dropped; %v significant\n", len(adj), degenerate, len(sig))

	for _, w := range cfg.ProximityWindows {
		anns, e := FindCloseGenes(sig, ref, w)
		if e != nil {
			log.Fatal(e)
		}
		path := filepath.Join(outDir, fmt.Sprintf("annotated_w%v.tsv", w))
		if e := WriteAnnotatedPath(path, anns...); e != nil {
			log.Fatal(e)
		}
		log.Printf("window %v: %v variants with replication evidence -> %v\n", w, len(anns), path)
	}
}
