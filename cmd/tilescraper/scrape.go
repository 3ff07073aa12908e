package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/Zersya/s3-tile-scrapper/internal/config"
	"github.com/Zersya/s3-tile-scrapper/internal/progress"
	"github.com/Zersya/s3-tile-scrapper/internal/scraper"
	"github.com/Zersya/s3-tile-scrapper/internal/source"
	"github.com/Zersya/s3-tile-scrapper/internal/store"
	"github.com/Zersya/s3-tile-scrapper/pkg/tile"
)

// runScrape enumerates the tiles covering the configured bounding box,
// prints the plan and estimates, and mirrors the tiles into the destination
// bucket through the worker pool.
func runScrape(args []string) int {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	sourcePattern := fs.String("source", "", "Source URL pattern with {z}/{x}/{y} placeholders")
	bucketURL := fs.String("bucket", "", "Destination bucket URL (s3://..., file://...)")
	prefix := fs.String("prefix", "", "Destination key prefix")
	bbox := fs.String("bbox", "", "Bounding box as minLon,minLat,maxLon,maxLat")
	minZoom := fs.Int("min-zoom", 0, "Minimum zoom level")
	maxZoom := fs.Int("max-zoom", 0, "Maximum zoom level")
	workers := fs.Int("workers", 0, "Number of concurrent workers")
	dryRun := fs.Bool("dry-run", false, "Print the plan and size estimate, perform no I/O")
	noConfirm := fs.Bool("no-confirm", false, "Skip the confirmation prompt")
	yes := fs.Bool("y", false, "Shorthand for -no-confirm")
	noBenchmark := fs.Bool("no-benchmark", false, "Skip the pre-flight benchmark")
	showProgress := fs.Bool("progress", false, "Show progress output")
	logFile := fs.String("log-file", "", "Append-only failure log path")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: tilescraper scrape [options]

Mirror map tiles covering a bounding box into object storage, skipping tiles
already present and retrying transient fetch failures.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return ExitConfigError
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.SourceURLPattern = *sourcePattern
		case "bucket":
			cfg.BucketURL = *bucketURL
		case "prefix":
			cfg.Prefix = *prefix
		case "bbox":
			b, err := config.ParseBBox(*bbox)
			if err != nil {
				flagErr = fmt.Errorf("invalid -bbox: %w", err)
				return
			}
			cfg.BBox = b
		case "min-zoom":
			cfg.MinZoom = *minZoom
		case "max-zoom":
			cfg.MaxZoom = *maxZoom
		case "workers":
			cfg.Workers = *workers
		case "log-file":
			cfg.LogFile = *logFile
		case "progress":
			cfg.Progress = *showProgress
		}
	})
	if flagErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", flagErr)
		return ExitInvalidArgs
	}

	// Dry run: enumerate and estimate only. No credentials, no network.
	if *dryRun {
		plan, err := tile.NewPlan(cfg.BBox, cfg.MinZoom, cfg.MaxZoom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building plan: %v\n", err)
			return ExitConfigError
		}
		printPlan(cfg, plan)
		return ExitSuccess
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	plan, err := tile.NewPlan(cfg.BBox, cfg.MinZoom, cfg.MaxZoom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building plan: %v\n", err)
		return ExitConfigError
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[tilescraper] Received interrupt, letting in-flight tiles finish...")
		cancel()
	}()

	st, err := store.Open(ctx, cfg.BucketURL, cfg.Prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer st.Close()

	logOut, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return ExitGeneralError
	}
	defer logOut.Close()
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	client := source.NewClient(source.Options{
		Timeout:             cfg.FetchTimeout,
		MaxIdleConnsPerHost: cfg.Workers * 2,
	})

	scr := scraper.New(client, st, cfg.SourceURLPattern, scraper.Options{
		Workers:  cfg.Workers,
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Logger:   logger,
	})

	fmt.Printf("Source:       %s\n", cfg.SourceURLPattern)
	fmt.Printf("Destination:  %s (prefix %s)\n", cfg.BucketURL, cfg.Prefix)
	fmt.Printf("Bounding box: %.4f,%.4f to %.4f,%.4f\n",
		cfg.BBox.Left(), cfg.BBox.Bottom(), cfg.BBox.Right(), cfg.BBox.Top())
	fmt.Printf("Zoom range:   %d to %d\n\n", cfg.MinZoom, cfg.MaxZoom)

	printPlan(cfg, plan)
	totalTiles := plan.TotalTiles()

	if !*noBenchmark {
		fmt.Printf("\nBenchmarking with up to %d sample tiles...\n", cfg.BenchmarkSamples)
		avg, err := scr.Benchmark(ctx, plan, scraper.BenchmarkOptions{
			Samples: cfg.BenchmarkSamples,
			OnSample: func(i int, elapsed time.Duration) {
				fmt.Printf("  sample %d: %.3fs\n", i, elapsed.Seconds())
			},
		})
		if err != nil {
			fmt.Println("Benchmark unavailable (check network and credentials)")
		} else {
			estimated := scraper.EstimateDuration(totalTiles, avg, cfg.Workers, cfg.OverheadFactor)
			fmt.Printf("Average per tile: %.3fs\n", avg.Seconds())
			fmt.Printf("Estimated total time with %d workers: %s\n",
				cfg.Workers, progress.FormatDuration(estimated))
		}
	}

	if !*noConfirm && !*yes {
		if !confirm("\nProceed with scraping? (yes/no): ") {
			fmt.Println("Aborted.")
			return ExitAborted
		}
	}

	opts := scraper.Options{
		Workers:  cfg.Workers,
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Logger:   logger,
	}
	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			TotalTiles: totalTiles,
			Workers:    cfg.Workers,
			SourceURL:  cfg.SourceURLPattern,
		})
		opts.OnOutcome = func(tile.Coord, scraper.Outcome) { reporter.TileDone() }
		reporter.Start()
		defer reporter.Stop()
	}
	scr = scraper.New(client, st, cfg.SourceURLPattern, opts)

	fmt.Println("\nStarting scrape...")
	start := time.Now()
	stats, runErr := scr.Run(ctx, plan)
	if reporter != nil {
		reporter.Stop()
	}

	fmt.Printf("\nScrape finished in %s\n", progress.FormatDuration(time.Since(start)))
	fmt.Printf("  Success:   %s\n", humanize.Comma(stats.Success))
	fmt.Printf("  Skipped:   %s\n", humanize.Comma(stats.Skipped))
	fmt.Printf("  Not found: %s\n", humanize.Comma(stats.NotFound))
	fmt.Printf("  Failed:    %s\n", humanize.Comma(stats.Failed))

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Run interrupted; counts above are partial")
		return ExitGeneralError
	}
	return ExitSuccess
}

// loadConfig builds the layered configuration: defaults, optional YAML file,
// then environment.
func loadConfig(configPath string) (config.Config, error) {
	cfg := config.Default()

	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// printPlan writes the per-zoom breakdown and the size estimate.
func printPlan(cfg config.Config, plan *tile.Plan) {
	fmt.Println("Tile count by zoom level:")
	for _, l := range plan.Levels {
		fmt.Printf("  zoom %2d: %12s tiles  (x: %d-%d, y: %d-%d)\n",
			l.Zoom, humanize.Comma(l.Count()), l.MinX, l.MaxX, l.MinY, l.MaxY)
	}

	total := plan.TotalTiles()
	estimated := scraper.EstimateSize(total, cfg.AvgTileSize)
	fmt.Printf("Total tiles: %s\n", humanize.Comma(total))
	fmt.Printf("Estimated size: %s (assuming %s per tile)\n",
		humanize.IBytes(uint64(estimated)), humanize.IBytes(uint64(cfg.AvgTileSize)))
}

// confirm prompts on stdout and reads a yes/no answer from stdin.
func confirm(prompt string) bool {
	fmt.Print(prompt)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}
