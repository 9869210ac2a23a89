package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/young626-jang/ltv-flask/internal/app"
	"github.com/young626-jang/ltv-flask/internal/config"
	"github.com/young626-jang/ltv-flask/internal/domain"
	"github.com/young626-jang/ltv-flask/internal/generator"
	"github.com/young626-jang/ltv-flask/internal/logging"
	"github.com/young626-jang/ltv-flask/internal/service"
)

func main() {
	var (
		datasetDir = flag.String("dataset-dir", "./seed-data", "Directory containing register documents (.txt, .html)")
		workers    = flag.Int("workers", 0, "Number of concurrent workers (defaults to ENGINE_WORKERS)")
		verify     = flag.Bool("verify", true, "Compare results with expected.json when the directory has one")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *workers <= 0 {
		*workers = cfg.Engine.Workers
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	inputs, err := service.LoadInputs(*datasetDir)
	if err != nil {
		logger.Error("failed to load documents", "error", err, "dir", *datasetDir)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		logger.Error("no documents found", "dir", *datasetDir)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire analysis service", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := components.Close(context.Background()); err != nil {
			logger.Warn("closing stores failed", "error", err)
		}
	}()

	analyzer := service.NewBulkAnalyzer(components.Service, *workers)

	start := time.Now()
	logger.Info("analysing documents", "count", len(inputs), "workers", *workers)
	analyses, err := analyzer.AnalyzeAll(ctx, inputs)
	failed := err != nil
	if failed {
		logger.Error("some documents failed", "error", err)
	}

	if *verify {
		mismatches, verr := verifyAgainstManifest(logger, *datasetDir, analyses)
		switch {
		case errors.Is(verr, os.ErrNotExist):
			logger.Debug("no manifest to verify against", "dir", *datasetDir)
		case verr != nil:
			logger.Warn("manifest unreadable", "error", verr)
		case mismatches > 0:
			logger.Error("results differ from manifest", "mismatches", mismatches)
			failed = true
		default:
			logger.Info("results match manifest")
		}
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "documents", len(inputs))
	if failed {
		os.Exit(1)
	}
}

// verifyAgainstManifest checks lien count and total ceiling of every analysed
// document against the generator's manifest.
func verifyAgainstManifest(logger *slog.Logger, dir string, analyses []domain.Analysis) (int, error) {
	if _, err := os.Stat(filepath.Join(dir, generator.ManifestFile)); err != nil {
		return 0, err
	}
	manifest, err := generator.ReadManifest(dir)
	if err != nil {
		return 0, err
	}
	expected := make(map[string]generator.Expectation, len(manifest.Documents))
	for _, doc := range manifest.Documents {
		expected[doc.Name] = doc.Expected
	}

	mismatches := 0
	for _, a := range analyses {
		if a.ID == "" {
			continue
		}
		name := strings.TrimSuffix(a.SourceName, filepath.Ext(a.SourceName))
		want, ok := expected[name]
		if !ok {
			continue
		}
		if len(a.Result.Liens) != len(want.Liens) || a.Result.TotalCeiling() != want.TotalCeiling {
			mismatches++
			logger.Warn("unexpected reconstruction",
				"document", a.SourceName,
				"liens", len(a.Result.Liens),
				"expectedLiens", len(want.Liens),
				"totalCeiling", a.Result.TotalCeiling(),
				"expectedTotalCeiling", want.TotalCeiling,
			)
		}
	}
	return mismatches, nil
}
