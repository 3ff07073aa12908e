package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Prefix != "raster" {
		t.Errorf("expected default prefix raster, got %q", cfg.Prefix)
	}
	if cfg.MinZoom != 2 || cfg.MaxZoom != 16 {
		t.Errorf("expected default zooms 2..16, got %d..%d", cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.Workers != 20 {
		t.Errorf("expected default workers 20, got %d", cfg.Workers)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("expected default fetch timeout 15s, got %v", cfg.FetchTimeout)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("expected default retry attempts 3, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Delay != time.Second {
		t.Errorf("expected default retry delay 1s, got %v", cfg.Retry.Delay)
	}
	if cfg.AvgTileSize != 15*1024 {
		t.Errorf("expected default avg tile size 15KiB, got %d", cfg.AvgTileSize)
	}
	if cfg.OverheadFactor != 1.2 {
		t.Errorf("expected default overhead factor 1.2, got %v", cfg.OverheadFactor)
	}
	if cfg.LogFile != "missing_tiles.log" {
		t.Errorf("expected default log file missing_tiles.log, got %q", cfg.LogFile)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
source_url_pattern: https://tiles.example.com/{z}/{x}/{y}.png
bucket: s3://my-tiles?region=ap-southeast-1
prefix: vector
bbox: [94.5, -11.5, 141.5, 6.0]
min_zoom: 0
max_zoom: 12
workers: 40
fetch_timeout: 30s
retry:
  attempts: 5
  delay: 2s
avg_tile_size: 20KiB
benchmark_samples: 4
overhead_factor: 1.5
log_file: failures.log
progress: true
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.SourceURLPattern != "https://tiles.example.com/{z}/{x}/{y}.png" {
		t.Errorf("unexpected source pattern %q", cfg.SourceURLPattern)
	}
	if cfg.BucketURL != "s3://my-tiles?region=ap-southeast-1" {
		t.Errorf("unexpected bucket %q", cfg.BucketURL)
	}
	if cfg.Prefix != "vector" {
		t.Errorf("expected prefix vector, got %q", cfg.Prefix)
	}
	if cfg.MinZoom != 0 {
		t.Errorf("expected min zoom 0, got %d", cfg.MinZoom)
	}
	if cfg.MaxZoom != 12 {
		t.Errorf("expected max zoom 12, got %d", cfg.MaxZoom)
	}
	if cfg.Workers != 40 {
		t.Errorf("expected workers 40, got %d", cfg.Workers)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("expected fetch timeout 30s, got %v", cfg.FetchTimeout)
	}
	if cfg.Retry.Attempts != 5 || cfg.Retry.Delay != 2*time.Second {
		t.Errorf("unexpected retry config %+v", cfg.Retry)
	}
	if cfg.AvgTileSize != 20*1024 {
		t.Errorf("expected avg tile size 20KiB, got %d", cfg.AvgTileSize)
	}
	if cfg.BenchmarkSamples != 4 {
		t.Errorf("expected 4 benchmark samples, got %d", cfg.BenchmarkSamples)
	}
	if cfg.OverheadFactor != 1.5 {
		t.Errorf("expected overhead factor 1.5, got %v", cfg.OverheadFactor)
	}
	if cfg.LogFile != "failures.log" {
		t.Errorf("expected log file failures.log, got %q", cfg.LogFile)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}

	want := orb.Bound{Min: orb.Point{94.5, -11.5}, Max: orb.Point{141.5, 6.0}}
	if cfg.BBox != want {
		t.Errorf("bbox = %v, want %v", cfg.BBox, want)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TILESCRAPER_SOURCE_URL_PATTERN", "https://env.example.com/{z}/{x}/{y}.png")
	t.Setenv("TILESCRAPER_BUCKET", "file:///tmp/tiles")
	t.Setenv("TILESCRAPER_BBOX", "100,-5,120,5")
	t.Setenv("TILESCRAPER_MIN_ZOOM", "3")
	t.Setenv("TILESCRAPER_MAX_ZOOM", "9")
	t.Setenv("TILESCRAPER_WORKERS", "8")
	t.Setenv("TILESCRAPER_RETRY_ATTEMPTS", "2")
	t.Setenv("TILESCRAPER_RETRY_DELAY", "500ms")
	t.Setenv("TILESCRAPER_BENCHMARK_SAMPLES", "6")
	t.Setenv("TILESCRAPER_OVERHEAD_FACTOR", "1.5")
	t.Setenv("TILESCRAPER_PROGRESS", "1")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.SourceURLPattern != "https://env.example.com/{z}/{x}/{y}.png" {
		t.Errorf("unexpected source pattern %q", cfg.SourceURLPattern)
	}
	if cfg.BucketURL != "file:///tmp/tiles" {
		t.Errorf("unexpected bucket %q", cfg.BucketURL)
	}
	if cfg.MinZoom != 3 || cfg.MaxZoom != 9 {
		t.Errorf("expected zooms 3..9, got %d..%d", cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Workers)
	}
	if cfg.Retry.Attempts != 2 || cfg.Retry.Delay != 500*time.Millisecond {
		t.Errorf("unexpected retry config %+v", cfg.Retry)
	}
	if cfg.BenchmarkSamples != 6 {
		t.Errorf("expected 6 benchmark samples, got %d", cfg.BenchmarkSamples)
	}
	if cfg.OverheadFactor != 1.5 {
		t.Errorf("expected overhead factor 1.5, got %v", cfg.OverheadFactor)
	}
	if !cfg.Progress {
		t.Error("expected progress true")
	}

	want := orb.Bound{Min: orb.Point{100, -5}, Max: orb.Point{120, 5}}
	if cfg.BBox != want {
		t.Errorf("bbox = %v, want %v", cfg.BBox, want)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("TILESCRAPER_WORKERS", "lots")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for invalid TILESCRAPER_WORKERS")
	}
}

func TestParseBBox(t *testing.T) {
	b, err := ParseBBox("94.5,-11.5,141.5,6.0")
	if err != nil {
		t.Fatalf("ParseBBox: %v", err)
	}
	want := orb.Bound{Min: orb.Point{94.5, -11.5}, Max: orb.Point{141.5, 6.0}}
	if b != want {
		t.Errorf("ParseBBox = %v, want %v", b, want)
	}

	// Spaces after commas are tolerated.
	if _, err := ParseBBox("94.5, -11.5, 141.5, 6.0"); err != nil {
		t.Errorf("ParseBBox with spaces: %v", err)
	}

	for _, bad := range []string{"", "1,2,3", "1,2,3,4,5", "a,b,c,d"} {
		if _, err := ParseBBox(bad); err == nil {
			t.Errorf("ParseBBox(%q): expected error", bad)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.SourceURLPattern = "https://tiles.example.com/{z}/{x}/{y}.png"
	valid.BucketURL = "s3://bucket"
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing source", func(c *Config) { c.SourceURLPattern = "" }},
		{"missing bucket", func(c *Config) { c.BucketURL = "" }},
		{"negative min zoom", func(c *Config) { c.MinZoom = -1 }},
		{"max below min", func(c *Config) { c.MinZoom = 10; c.MaxZoom = 5 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }},
		{"zero tile size", func(c *Config) { c.AvgTileSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
