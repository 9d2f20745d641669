package odds

import "context"

type Repository interface {
	// UpsertSnapshots is keyed by (game_id, book, market_type, captured_at).
	UpsertSnapshots(ctx context.Context, items []Snapshot) error
	ListByGame(ctx context.Context, gameID int64) ([]Snapshot, error)
}
