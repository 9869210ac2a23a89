package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/young626-jang/ltv-flask/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		documents        = flag.Int("documents", cfg.NumDocuments, "number of register documents to generate")
		maxSales         = flag.Int("max-sales", cfg.MaxSales, "maximum ownership transfers per document")
		maxMortgages     = flag.Int("max-mortgages", cfg.MaxMortgages, "maximum mortgages per document")
		maxAttachments   = flag.Int("max-attachments", cfg.MaxAttachments, "maximum provisional attachments per document")
		amendChance      = flag.Float64("amend-chance", cfg.AmendChance, "probability a mortgage is amended")
		cancelChance     = flag.Float64("cancel-chance", cfg.CancelChance, "probability a right is cancelled")
		attachmentChance = flag.Float64("attachment-chance", cfg.AttachmentChance, "probability a document carries attachments")
		seed             = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir        = flag.String("output-dir", "seed-data", "directory to write documents and expected.json")
		format           = flag.String("format", "text", "document format: text or html")
		writeStdout      = flag.Bool("stdout", false, "write the manifest to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumDocuments:     *documents,
		MaxSales:         *maxSales,
		MaxMortgages:     *maxMortgages,
		MaxAttachments:   *maxAttachments,
		AmendChance:      clampProbability(*amendChance),
		CancelChance:     clampProbability(*cancelChance),
		AttachmentChance: clampProbability(*attachmentChance),
		Seed:             *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir, *format); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d register documents into %s\n", len(dataset.Documents), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
