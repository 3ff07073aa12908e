package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Zersya/s3-tile-scrapper/internal/config"
	"github.com/Zersya/s3-tile-scrapper/pkg/tile"
)

// runPlan prints the tile plan and size estimate for the configured
// bounding box and zoom range. It performs no network or store I/O and
// needs no credentials.
func runPlan(args []string) int {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	bbox := fs.String("bbox", "", "Bounding box as minLon,minLat,maxLon,maxLat")
	minZoom := fs.Int("min-zoom", 0, "Minimum zoom level")
	maxZoom := fs.Int("max-zoom", 0, "Maximum zoom level")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: tilescraper plan [options]

Print the per-zoom tile counts and estimated size for a bounding box and
zoom range, without performing any I/O.

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
		}
	})
	if flagErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", flagErr)
		return ExitInvalidArgs
	}

	plan, err := tile.NewPlan(cfg.BBox, cfg.MinZoom, cfg.MaxZoom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building plan: %v\n", err)
		return ExitConfigError
	}

	printPlan(cfg, plan)
	return ExitSuccess
}
