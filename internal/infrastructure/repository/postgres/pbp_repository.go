package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	qb "github.com/scorewatch/scorewatch/internal/platform/querybuilder"
)

type pbpEventTableModel struct {
	ID          int64     `db:"id"`
	GameID      int64     `db:"game_id"`
	Period      int       `db:"period"`
	Sequence    int       `db:"sequence"`
	Clock       string    `db:"clock"`
	Description string    `db:"description"`
	PlayType    string    `db:"play_type"`
	Team        string    `db:"team"`
	CreatedAt   time.Time `db:"created_at"`
}

type PBPRepository struct {
	db *sqlx.DB
}

func NewPBPRepository(db *sqlx.DB) *PBPRepository {
	return &PBPRepository{db: db}
}

func (r *PBPRepository) UpsertEvents(ctx context.Context, events []pbp.Event) error {
	if len(events) == 0 {
		return nil
	}

	now := time.Now().UTC()
	builder := qb.InsertInto("pbp_events").
		Columns("game_id", "period", "sequence", "clock", "description", "play_type", "team", "created_at")
	for _, event := range events {
		builder.Values(event.GameID, event.Period, event.Sequence, event.Clock, event.Description, event.PlayType, event.Team, now)
	}

	// Replays are expected during live polling; the natural key keeps the
	// table append-only per event.
	query, args, err := builder.
		Suffix("ON CONFLICT (game_id, period, sequence) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert pbp events query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pbp events: %w", err)
	}
	return nil
}

func (r *PBPRepository) ListByGame(ctx context.Context, gameID int64) ([]pbp.Event, error) {
	query, args, err := qb.Select("*").From("pbp_events").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("period", "sequence").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select pbp events query: %w", err)
	}

	var rows []pbpEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pbp events: %w", err)
	}

	out := make([]pbp.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, pbp.Event{
			GameID:      row.GameID,
			Period:      row.Period,
			Sequence:    row.Sequence,
			Clock:       row.Clock,
			Description: row.Description,
			PlayType:    row.PlayType,
			Team:        row.Team,
		})
	}
	return out, nil
}

func (r *PBPRepository) CountByGame(ctx context.Context, gameID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("pbp_events").
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count pbp events query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count pbp events: %w", err)
	}
	return count, nil
}
