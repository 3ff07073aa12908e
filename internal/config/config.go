// Package config defines configuration for the tilescraper CLI.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables (TILESCRAPER_ prefix), then command-line flag
// overrides applied by the CLI shell.
//
// S3 region and credentials are not part of this configuration; the s3blob
// driver resolves them from the ambient AWS environment (AWS_REGION,
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, or the default chain).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Config defines a scrape run.
type Config struct {
	// SourceURLPattern is the upstream tile URL with {z}, {x}, {y}
	// placeholders.
	SourceURLPattern string

	// BucketURL is the destination bucket in gocloud URL form
	// (s3://bucket?region=..., file://dir).
	BucketURL string

	// Prefix is the destination key prefix; tiles land under
	// <prefix>/<z>/<x>/<y>.png.
	Prefix string

	// BBox is the geographic area to mirror.
	BBox orb.Bound

	MinZoom int
	MaxZoom int
	Workers int

	// FetchTimeout is the hard per-request timeout against the source.
	FetchTimeout time.Duration

	Retry RetryConfig

	// AvgTileSize is the assumed average tile size for the pre-flight
	// size estimate.
	AvgTileSize int64

	// BenchmarkSamples caps the pre-flight benchmark sample count.
	BenchmarkSamples int

	// OverheadFactor pads the duration estimate for scheduling and
	// existence-check latency.
	OverheadFactor float64

	// LogFile is the append-only failure/anomaly log path.
	LogFile string

	// Progress enables the console progress reporter.
	Progress bool
}

// RetryConfig defines the per-tile retry behavior: a fixed number of
// attempts with a fixed delay between them.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Default returns a Config with the scraper defaults: the extended Indonesia
// bounding box (Sabang through Papua, Rote through Sangihe-Talaud) across
// zooms 2-16.
func Default() Config {
	return Config{
		Prefix:           "raster",
		BBox:             orb.Bound{Min: orb.Point{94.5, -11.5}, Max: orb.Point{141.5, 6.0}},
		MinZoom:          2,
		MaxZoom:          16,
		Workers:          20,
		FetchTimeout:     15 * time.Second,
		Retry:            RetryConfig{Attempts: 3, Delay: time.Second},
		AvgTileSize:      15 * 1024,
		BenchmarkSamples: 10,
		OverheadFactor:   1.2,
		LogFile:          "missing_tiles.log",
	}
}

// yamlConfig is the YAML shape: sizes and durations as strings, zooms as
// pointers so that an explicit zero survives.
type yamlConfig struct {
	SourceURLPattern string          `yaml:"source_url_pattern"`
	Bucket           string          `yaml:"bucket"`
	Prefix           string          `yaml:"prefix"`
	BBox             []float64       `yaml:"bbox"`
	MinZoom          *int            `yaml:"min_zoom"`
	MaxZoom          *int            `yaml:"max_zoom"`
	Workers          int             `yaml:"workers"`
	FetchTimeout     string          `yaml:"fetch_timeout"`
	Retry            yamlRetryConfig `yaml:"retry"`
	AvgTileSize      string          `yaml:"avg_tile_size"`
	BenchmarkSamples int             `yaml:"benchmark_samples"`
	OverheadFactor   float64         `yaml:"overhead_factor"`
	LogFile          string          `yaml:"log_file"`
	Progress         bool            `yaml:"progress"`
}

type yamlRetryConfig struct {
	Attempts int    `yaml:"attempts"`
	Delay    string `yaml:"delay"`
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.SourceURLPattern != "" {
		cfg.SourceURLPattern = yc.SourceURLPattern
	}
	if yc.Bucket != "" {
		cfg.BucketURL = yc.Bucket
	}
	if yc.Prefix != "" {
		cfg.Prefix = yc.Prefix
	}
	if yc.BBox != nil {
		b, err := boundFromSlice(yc.BBox)
		if err != nil {
			return Config{}, fmt.Errorf("parse bbox: %w", err)
		}
		cfg.BBox = b
	}
	if yc.MinZoom != nil {
		cfg.MinZoom = *yc.MinZoom
	}
	if yc.MaxZoom != nil {
		cfg.MaxZoom = *yc.MaxZoom
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.FetchTimeout != "" {
		d, err := time.ParseDuration(yc.FetchTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse fetch_timeout: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Delay != "" {
		d, err := time.ParseDuration(yc.Retry.Delay)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.delay: %w", err)
		}
		cfg.Retry.Delay = d
	}
	if yc.AvgTileSize != "" {
		size, err := humanize.ParseBytes(yc.AvgTileSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse avg_tile_size: %w", err)
		}
		cfg.AvgTileSize = int64(size)
	}
	if yc.BenchmarkSamples != 0 {
		cfg.BenchmarkSamples = yc.BenchmarkSamples
	}
	if yc.OverheadFactor != 0 {
		cfg.OverheadFactor = yc.OverheadFactor
	}
	if yc.LogFile != "" {
		cfg.LogFile = yc.LogFile
	}
	cfg.Progress = yc.Progress

	return cfg, nil
}

// LoadFromEnv overlays configuration from TILESCRAPER_* environment
// variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("TILESCRAPER_SOURCE_URL_PATTERN"); v != "" {
		c.SourceURLPattern = v
	}
	if v := os.Getenv("TILESCRAPER_BUCKET"); v != "" {
		c.BucketURL = v
	}
	if v := os.Getenv("TILESCRAPER_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("TILESCRAPER_BBOX"); v != "" {
		b, err := ParseBBox(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_BBOX: %w", err)
		}
		c.BBox = b
	}
	if v := os.Getenv("TILESCRAPER_MIN_ZOOM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_MIN_ZOOM: %w", err)
		}
		c.MinZoom = n
	}
	if v := os.Getenv("TILESCRAPER_MAX_ZOOM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_MAX_ZOOM: %w", err)
		}
		c.MaxZoom = n
	}
	if v := os.Getenv("TILESCRAPER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("TILESCRAPER_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_FETCH_TIMEOUT: %w", err)
		}
		c.FetchTimeout = d
	}
	if v := os.Getenv("TILESCRAPER_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("TILESCRAPER_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_RETRY_DELAY: %w", err)
		}
		c.Retry.Delay = d
	}
	if v := os.Getenv("TILESCRAPER_AVG_TILE_SIZE"); v != "" {
		size, err := humanize.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_AVG_TILE_SIZE: %w", err)
		}
		c.AvgTileSize = int64(size)
	}
	if v := os.Getenv("TILESCRAPER_BENCHMARK_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_BENCHMARK_SAMPLES: %w", err)
		}
		c.BenchmarkSamples = n
	}
	if v := os.Getenv("TILESCRAPER_OVERHEAD_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse TILESCRAPER_OVERHEAD_FACTOR: %w", err)
		}
		c.OverheadFactor = f
	}
	if v := os.Getenv("TILESCRAPER_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("TILESCRAPER_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}

	return nil
}

// Validate checks the configuration before any plan is built. A failure
// here is the only error class that aborts the whole run.
func (c *Config) Validate() error {
	if c.SourceURLPattern == "" {
		return errors.New("config: source URL pattern is required")
	}
	if c.BucketURL == "" {
		return errors.New("config: bucket is required")
	}
	if c.MinZoom < 0 {
		return fmt.Errorf("config: min zoom %d is negative", c.MinZoom)
	}
	if c.MaxZoom < c.MinZoom {
		return fmt.Errorf("config: max zoom %d below min zoom %d", c.MaxZoom, c.MinZoom)
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Retry.Attempts <= 0 {
		return errors.New("config: retry attempts must be positive")
	}
	if c.AvgTileSize <= 0 {
		return errors.New("config: avg tile size must be positive")
	}
	return nil
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat" into a bound. Ordering of
// min/max is not enforced; the planner normalizes.
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("value %d: %w", i+1, err)
		}
		vals[i] = f
	}

	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, nil
}

func boundFromSlice(vals []float64) (orb.Bound, error) {
	if len(vals) != 4 {
		return orb.Bound{}, fmt.Errorf("expected 4 values, got %d", len(vals))
	}
	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, nil
}
