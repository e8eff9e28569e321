// Package archive stores export snapshots as downloadable artifacts.
// Two drivers exist: a local directory and an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Driver identifies an archive backend.
type Driver string

const (
	DriverNone Driver = "none"
	DriverFS   Driver = "fs"
	DriverS3   Driver = "s3"
)

// ParseDriver returns the Driver named by s; blank means DriverNone.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case "", DriverNone:
		return DriverNone, nil
	case DriverFS, DriverS3:
		return d, nil
	}
	return "", fmt.Errorf("unknown archive driver %q", s)
}

// Info describes a stored artifact.
type Info struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store writes artifacts and hands back a URL they can be fetched from.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (Info, error)
}

// sanitizeKey rejects keys that are blank, absolute or climb out of the root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid key %q: contains '..'", key)
		}
	}
	return key, nil
}
