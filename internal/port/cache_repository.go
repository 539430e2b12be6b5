package port

import "context"

type CacheRepository interface {
	// SetIdempotency reserves a submission key, returns false if already taken.
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a reserved key so a failed submission can be retried.
	ReleaseIdempotency(ctx context.Context, key string) error
}
