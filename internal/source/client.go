// Package source fetches tiles from the upstream HTTP tile server.
//
// The client performs exactly one attempt per Fetch call and classifies the
// result; retry scheduling belongs to the caller, which applies a fixed
// delay between attempts per tile job.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zersya/s3-tile-scrapper/pkg/tile"
)

// Fetch error classes. The worker retry policy keys off these.
var (
	// ErrNotFound is a permanent negative: the upstream has no such tile.
	ErrNotFound = errors.New("source: tile not found")

	// ErrEmptyBody marks a 200 response with a zero-length body. Treated
	// as transient, like any other retryable failure.
	ErrEmptyBody = errors.New("source: empty tile body")
)

// StatusError is returned for response statuses other than 200 and 404.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: unexpected status %d", e.Code)
}

// Options configures the tile client.
type Options struct {
	// Timeout is the hard per-request timeout.
	// Default: 15s
	Timeout time.Duration

	// MaxIdleConnsPerHost sets the connection pool size. All requests go
	// to a single upstream host, so this should track the worker count.
	// Default: 100
	MaxIdleConnsPerHost int

	// UserAgent overrides the request User-Agent when non-empty.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:             15 * time.Second,
		MaxIdleConnsPerHost: 100,
	}
}

// Client fetches tiles over HTTP. It is immutable configuration shared
// across workers.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a tile client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = 100
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		userAgent: opts.UserAgent,
	}
}

// URLFor substitutes the {z}, {x} and {y} placeholders in pattern with the
// tile's coordinates.
func URLFor(pattern string, c tile.Coord) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(c.Z),
		"{x}", strconv.Itoa(c.X),
		"{y}", strconv.Itoa(c.Y),
	)
	return r.Replace(pattern)
}

// Fetch performs a single GET for url and returns the tile bytes.
//
// A 404 returns ErrNotFound, an empty 200 body returns ErrEmptyBody, any
// other non-200 status returns a *StatusError, and transport errors
// (including the request timeout) pass through wrapped.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: read body: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyBody
	}

	return data, nil
}
