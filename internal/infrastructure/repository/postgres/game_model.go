package postgres

import (
	"database/sql"
	"time"

	"github.com/scorewatch/scorewatch/internal/domain/game"
)

type gameTableModel struct {
	ID            int64         `db:"id"`
	LeagueCode    string        `db:"league_code"`
	Season        int           `db:"season"`
	SeasonType    string        `db:"season_type"`
	GameDate      time.Time     `db:"game_date"`
	HomeTeam      string        `db:"home_team"`
	AwayTeam      string        `db:"away_team"`
	HomeScore     sql.NullInt64 `db:"home_score"`
	AwayScore     sql.NullInt64 `db:"away_score"`
	Venue         string        `db:"venue"`
	Status        string        `db:"status"`
	StartTime     time.Time     `db:"start_time"`
	EndTime       *time.Time    `db:"end_time"`
	SourceGameKey string        `db:"source_game_key"`
	HasPBP        bool          `db:"has_pbp"`
	HasSocial     bool          `db:"has_social"`
	LastUpdatedAt time.Time     `db:"last_updated_at"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:            m.ID,
		LeagueCode:    m.LeagueCode,
		Season:        m.Season,
		SeasonType:    m.SeasonType,
		HomeTeam:      m.HomeTeam,
		AwayTeam:      m.AwayTeam,
		HomeScore:     nullInt64ToIntPtr(m.HomeScore),
		AwayScore:     nullInt64ToIntPtr(m.AwayScore),
		Venue:         m.Venue,
		Status:        game.Status(m.Status),
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		SourceGameKey: m.SourceGameKey,
		HasPBP:        m.HasPBP,
		HasSocial:     m.HasSocial,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func intPtrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
