package port

import "context"

// BlobRepository is the file store holding product images.
type BlobRepository interface {
	// Upload stores the file bytes under the given path.
	Upload(ctx context.Context, path string, data []byte) error

	// PublicURL returns the address the stored file is served from.
	PublicURL(path string) string
}
