// Package store wraps the destination blob bucket behind the two operations
// the scraper needs: a keyed existence check and a keyed write.
//
// Buckets are addressed by gocloud URL (s3://bucket?region=..., file://dir,
// mem://). For S3 buckets, region and credentials resolve through the
// ambient AWS environment (AWS_REGION, AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY, or the default credential chain).
package store

import (
	"context"
	"fmt"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/Zersya/s3-tile-scrapper/pkg/tile"
)

// Store is a tile destination backed by a blob bucket. A Store is immutable
// configuration once constructed and safe for concurrent use.
type Store struct {
	bucket *blob.Bucket
	prefix string
}

// Open opens the bucket at bucketURL and wraps it with the given key prefix.
// The caller must register the relevant blob driver (s3blob, fileblob,
// memblob) via a blank import.
func Open(ctx context.Context, bucketURL, prefix string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("store: open bucket %s: %w", bucketURL, err)
	}
	return New(bucket, prefix), nil
}

// New wraps an already-open bucket.
func New(bucket *blob.Bucket, prefix string) *Store {
	return &Store{bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Close releases the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// Key returns the destination key for a tile. The <prefix>/<z>/<x>/<y>.png
// layout is a contract shared with downstream tile consumers and must not
// change.
func (s *Store) Key(c tile.Coord) string {
	if s.prefix == "" {
		return c.Path() + ".png"
	}
	return s.prefix + "/" + c.Path() + ".png"
}

// Exists reports whether the tile is already stored. A not-found answer from
// the bucket is a clean miss; any other error is returned so the caller can
// apply its own degrade policy.
func (s *Store) Exists(ctx context.Context, c tile.Coord) (bool, error) {
	exists, err := s.bucket.Exists(ctx, s.Key(c))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("store: check %s: %w", s.Key(c), err)
	}
	return exists, nil
}

// Put writes tile bytes under the tile's key with the given content type.
func (s *Store) Put(ctx context.Context, c tile.Coord, data []byte, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, s.Key(c), data, opts); err != nil {
		return fmt.Errorf("store: write %s: %w", s.Key(c), err)
	}
	return nil
}
