package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/app"
	"github.com/joseph-ayodele/awb-extractor/internal/async"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/ingest"
	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem    = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir      = flag.String("dir", "", "directory of label text files to process (required)")
		out      = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		csvOut   = flag.String("csv", "", "also write a CSV export to this path")
		fromStr  = flag.String("from", "", "export from ship date YYYY-MM-DD")
		toStr    = flag.String("to", "", "export to ship date YYYY-MM-DD")
		platform = flag.String("platform", "", "export only this platform (tiktok, shopee)")
		workers  = flag.Int("workers", 0, "worker count (defaults to BATCH_WORKERS)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "awb-records.xlsx")
	}

	filter := repository.Filter{Limit: 1000}
	var err error
	if filter.From, err = parseDate(*fromStr); err != nil {
		printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
		os.Exit(1)
	}
	if filter.To, err = parseDate(*toStr); err != nil {
		printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
		os.Exit(1)
	}
	if *platform != "" {
		p, ok := constants.CanonicalizePlatform(*platform)
		if !ok {
			printError("Error: unknown --platform %q\n", *platform)
			os.Exit(1)
		}
		filter.Platform = p
	}

	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Options{InMemory: *inmem})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	logger.Info("starting load", "dir", *dir)
	files, stats, err := ingest.LoadDirectory(ctx, *dir, ingest.LoadOptions{SkipHidden: true})
	if err != nil {
		logger.Error("failed to load directory", "error", err)
		os.Exit(1)
	}
	logger.Info("load complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"loaded", stats.Loaded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	docs := make([]pipeline.Document, 0, len(files))
	for _, f := range files {
		if f.Err != "" || f.Deduplicated {
			continue
		}
		docs = append(docs, f.Document())
	}

	outcomes, runStats := async.RunBatch(ctx, a.Processor, docs, async.BatchOptions{
		Workers: cfg.Batch.Workers,
		Timeout: cfg.Batch.ProcessTimeout,
	}, logger)
	for _, o := range outcomes {
		if o.Err != nil {
			logger.Warn("document failed", "source", o.Source, "error", o.Err)
		}
	}

	saved, err := a.Processor.Persist(ctx, outcomes)
	if err != nil {
		logger.Error("failed to persist records", "error", err)
		os.Exit(1)
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := a.Export.ExportXLSX(ctx, filter)
	if err != nil {
		logger.Error("failed to export records", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	if *csvOut != "" {
		if err := writeCSV(ctx, a, *csvOut, filter); err != nil {
			logger.Error("failed to write csv export", "path", *csvOut, "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files loaded: %d (duplicates skipped: %d)\n", stats.Loaded, stats.Deduplicated)
	fmt.Printf("- Succeeded: %d, degraded: %d, failed: %d\n", runStats.Succeeded, runStats.Degraded, runStats.Failed)
	fmt.Printf("- Records saved: %d\n", saved)
	fmt.Printf("- Elapsed: %s\n", runStats.Elapsed.Round(time.Millisecond))
	fmt.Printf("- Output: %s\n", *out)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeCSV(ctx context.Context, a *app.App, path string, filter repository.Filter) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Export.ExportCSV(ctx, f, filter); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
