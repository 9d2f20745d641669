package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	qb "github.com/scorewatch/scorewatch/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id int64) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *GameRepository) ListByWindow(ctx context.Context, from, to time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Expr("start_time >= ? AND start_time < ?", from.UTC(), to.UTC())).
		OrderBy("start_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by window query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games by window: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) FindByTeam(ctx context.Context, leagueCode, teamAbbreviation string, from, to time.Time) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("league_code", leagueCode),
			qb.Expr("(home_team = ? OR away_team = ?)", teamAbbreviation, teamAbbreviation),
			qb.Expr("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()),
		).
		OrderBy("start_time DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game by team query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game by team: %w", err)
	}

	return row.toDomain(), true, nil
}

type gameInsertModel struct {
	LeagueCode    string        `db:"league_code"`
	Season        int           `db:"season"`
	SeasonType    string        `db:"season_type"`
	GameDate      time.Time     `db:"game_date"`
	HomeTeam      string        `db:"home_team"`
	AwayTeam      string        `db:"away_team"`
	HomeScore     any           `db:"home_score"`
	AwayScore     any           `db:"away_score"`
	Venue         string        `db:"venue"`
	Status        string        `db:"status"`
	StartTime     time.Time     `db:"start_time"`
	SourceGameKey string        `db:"source_game_key"`
	LastUpdatedAt time.Time     `db:"last_updated_at"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

func (r *GameRepository) UpsertSchedule(ctx context.Context, item game.Game) (int64, error) {
	now := time.Now().UTC()
	status := item.Status
	if status == "" {
		status = game.StatusScheduled
	}

	startTime := item.StartTime.UTC()
	insertModel := gameInsertModel{
		LeagueCode:    item.LeagueCode,
		Season:        item.Season,
		SeasonType:    item.SeasonType,
		GameDate:      startTime.Truncate(24 * time.Hour),
		HomeTeam:      item.HomeTeam,
		AwayTeam:      item.AwayTeam,
		HomeScore:     intPtrToNullInt64(item.HomeScore),
		AwayScore:     intPtrToNullInt64(item.AwayScore),
		Venue:         item.Venue,
		Status:        string(status),
		StartTime:     startTime,
		SourceGameKey: item.SourceGameKey,
		LastUpdatedAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Status and end_time are owned by the status synchronizer, so the
	// conflict branch never touches them. Scores only refresh when the
	// provider sent them.
	query, args, err := qb.InsertModel("games", insertModel, `ON CONFLICT (league_code, season, game_date, home_team, away_team)
DO UPDATE SET
	season_type = EXCLUDED.season_type,
	venue = EXCLUDED.venue,
	start_time = EXCLUDED.start_time,
	source_game_key = EXCLUDED.source_game_key,
	home_score = COALESCE(EXCLUDED.home_score, games.home_score),
	away_score = COALESCE(EXCLUDED.away_score, games.away_score),
	last_updated_at = EXCLUDED.last_updated_at,
	updated_at = EXCLUDED.updated_at
RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build upsert game query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("upsert game: %w", err)
	}
	return id, nil
}

func (r *GameRepository) UpdateStatus(ctx context.Context, id int64, status game.Status, endTime *time.Time) error {
	now := time.Now().UTC()
	query, args, err := qb.Update("games").
		Set("status", string(status)).
		SetExpr("end_time", "COALESCE(games.end_time, ?)", endTime).
		Set("last_updated_at", now).
		Set("updated_at", now).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game status query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	return nil
}

func (r *GameRepository) SetHasPBP(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, "has_pbp")
}

func (r *GameRepository) SetHasSocial(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, "has_social")
}

func (r *GameRepository) setFlag(ctx context.Context, id int64, column string) error {
	query, args, err := qb.Update("games").
		Set(column, true).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game %s query: %w", column, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update game %s: %w", column, err)
	}
	return nil
}
