package pbp

import "context"

type Repository interface {
	// UpsertEvents is idempotent on (game_id, period, sequence); replaying
	// the same event leaves exactly one stored row.
	UpsertEvents(ctx context.Context, events []Event) error
	ListByGame(ctx context.Context, gameID int64) ([]Event, error)
	CountByGame(ctx context.Context, gameID int64) (int, error)
}
