package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSBlobAdapter stores product images on the local filesystem and
// serves them from a public base URL, mirroring a public-bucket blob
// store.
type FSBlobAdapter struct {
	root    string
	baseURL string
}

func NewFSBlobAdapter(root, baseURL string) *FSBlobAdapter {
	return &FSBlobAdapter{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (f *FSBlobAdapter) Upload(ctx context.Context, path string, data []byte) error {
	full := filepath.Join(f.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

func (f *FSBlobAdapter) PublicURL(path string) string {
	return f.baseURL + "/" + strings.TrimLeft(path, "/")
}
