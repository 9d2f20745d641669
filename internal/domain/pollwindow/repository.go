package pollwindow

import (
	"context"
	"time"
)

type Repository interface {
	Get(ctx context.Context, platform, handle string, start, end time.Time) (Window, bool, error)
	// Upsert is keyed by (platform, handle, window_start, window_end);
	// retries update the row in place and bump attempts.
	Upsert(ctx context.Context, window Window) error
}
