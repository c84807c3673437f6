// Package receipts stores uploaded payment receipts. The returned reference
// is opaque to the rest of the system.
package receipts

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store saves and retrieves receipt files.
type Store interface {
	// Put saves a receipt for memberID and returns its reference.
	Put(ctx context.Context, memberID, filename, contentType string, content io.Reader) (string, error)

	// Open returns the receipt content for ref. The caller closes it.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)

	// Delete removes the receipt for ref. Deleting a missing receipt is not
	// an error.
	Delete(ctx context.Context, ref string) error
}

// Backend selects a Store implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// Config holds the settings for every backend.
type Config struct {
	Backend  Backend
	LocalDir string
	Bucket   string
	Region   string
}

// New creates the store selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		dir := cfg.LocalDir
		if dir == "" {
			dir = "./data/receipts"
		}
		return NewLocalStore(dir)

	case BackendS3:
		if cfg.Bucket == "" || cfg.Region == "" {
			return nil, fmt.Errorf("s3 receipt store requires a bucket and a region")
		}
		return NewS3Store(ctx, cfg.Bucket, cfg.Region)

	default:
		return nil, fmt.Errorf("unknown receipt backend: %s", cfg.Backend)
	}
}

// objectKey lays receipts out as member/year/month/uuid_filename.
func objectKey(memberID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d/%02d/%s_%s",
		sanitizeFilename(memberID),
		now.Year(),
		now.Month(),
		uuid.New().String(),
		sanitizeFilename(filename),
	)
}

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", "..", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

func sanitizeFilename(filename string) string {
	filename = filenameReplacer.Replace(filename)
	if filename == "" {
		return "receipt"
	}
	return filename
}
