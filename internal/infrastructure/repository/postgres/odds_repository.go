package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/internal/domain/odds"
	qb "github.com/scorewatch/scorewatch/internal/platform/querybuilder"
)

type oddsSnapshotTableModel struct {
	ID         int64           `db:"id"`
	GameID     int64           `db:"game_id"`
	Book       string          `db:"book"`
	MarketType string          `db:"market_type"`
	HomeLine   sql.NullFloat64 `db:"home_line"`
	AwayLine   sql.NullFloat64 `db:"away_line"`
	Total      sql.NullFloat64 `db:"total"`
	CapturedAt time.Time       `db:"captured_at"`
	CreatedAt  time.Time       `db:"created_at"`
}

type OddsRepository struct {
	db *sqlx.DB
}

func NewOddsRepository(db *sqlx.DB) *OddsRepository {
	return &OddsRepository{db: db}
}

func (r *OddsRepository) UpsertSnapshots(ctx context.Context, items []odds.Snapshot) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	builder := qb.InsertInto("odds_snapshots").
		Columns("game_id", "book", "market_type", "home_line", "away_line", "total", "captured_at", "created_at")
	for _, item := range items {
		builder.Values(
			item.GameID,
			item.Book,
			item.MarketType,
			floatPtrToNullFloat64(item.HomeLine),
			floatPtrToNullFloat64(item.AwayLine),
			floatPtrToNullFloat64(item.Total),
			item.CapturedAt.UTC(),
			now,
		)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (game_id, book, market_type, captured_at) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert odds snapshots query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert odds snapshots: %w", err)
	}
	return nil
}

func (r *OddsRepository) ListByGame(ctx context.Context, gameID int64) ([]odds.Snapshot, error) {
	query, args, err := qb.Select("*").From("odds_snapshots").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("captured_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select odds snapshots query: %w", err)
	}

	var rows []oddsSnapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select odds snapshots: %w", err)
	}

	out := make([]odds.Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, odds.Snapshot{
			GameID:     row.GameID,
			Book:       row.Book,
			MarketType: row.MarketType,
			HomeLine:   nullFloat64ToPtr(row.HomeLine),
			AwayLine:   nullFloat64ToPtr(row.AwayLine),
			Total:      nullFloat64ToPtr(row.Total),
			CapturedAt: row.CapturedAt,
		})
	}
	return out, nil
}

func floatPtrToNullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullFloat64ToPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}
