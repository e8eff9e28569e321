package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// FSStore keeps artifacts under a local directory.
type FSStore struct {
	root string
}

// NewFSStore returns a store rooted at root, creating it if needed.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		root = "exports"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("archive.NewFSStore: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("archive.NewFSStore: %w", err)
	}
	return &FSStore{root: abs}, nil
}

// Put writes body to root/key. Existing artifacts are never overwritten.
func (s *FSStore) Put(ctx context.Context, key string, body []byte, contentType string) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}
	path := filepath.Join(s.root, filepath.FromSlash(k))
	if _, err := os.Stat(path); err == nil {
		return Info{}, fmt.Errorf("archive.FSStore.Put: %s already exists", key)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Info{}, fmt.Errorf("archive.FSStore.Put: %w", err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return Info{
		Key:         k,
		Size:        int64(len(body)),
		ContentType: contentType,
		URL:         u.String(),
		CreatedAt:   time.Now().UTC(),
	}, nil
}
