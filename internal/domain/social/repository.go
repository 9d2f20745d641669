package social

import "context"

type Repository interface {
	// Upsert inserts by (platform, external_id). On conflict, content fields
	// are refreshed but reveal_level is only overwritten when the new value
	// is stricter.
	Upsert(ctx context.Context, post Post) error
	ListByGame(ctx context.Context, gameID int64) ([]Post, error)
	// ReclassifyStricter tightens reveal_level pre -> post; looser updates
	// are ignored.
	ReclassifyStricter(ctx context.Context, platform, externalID string, reason string) error
}
