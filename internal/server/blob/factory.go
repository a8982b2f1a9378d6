package blob

import (
	"context"
	"fmt"
)

// NewStore creates a blob store implementation for the configured kind.
func NewStore(ctx context.Context, kind string, opts S3Options) (Store, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		if opts.Bucket == "" {
			return nil, fmt.Errorf("s3 blob store requires a bucket")
		}
		return NewS3Store(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown blob store kind: %s", kind)
	}
}
