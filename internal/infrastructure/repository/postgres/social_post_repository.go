package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/internal/domain/social"
	qb "github.com/scorewatch/scorewatch/internal/platform/querybuilder"
)

type socialPostTableModel struct {
	ID           int64         `db:"id"`
	Platform     string        `db:"platform"`
	ExternalID   string        `db:"external_id"`
	Handle       string        `db:"handle"`
	TeamID       sql.NullInt64 `db:"team_id"`
	GameID       sql.NullInt64 `db:"game_id"`
	LeagueCode   string        `db:"league_code"`
	PostedAt     time.Time     `db:"posted_at"`
	Text         string        `db:"text"`
	MediaURL     string        `db:"media_url"`
	MediaType    string        `db:"media_type"`
	HasVideo     bool          `db:"has_video"`
	RevealLevel  string        `db:"reveal_level"`
	RevealReason string        `db:"reveal_reason"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (m socialPostTableModel) toDomain() social.Post {
	return social.Post{
		ID:           m.ID,
		Platform:     m.Platform,
		ExternalID:   m.ExternalID,
		Handle:       m.Handle,
		TeamID:       m.TeamID.Int64,
		GameID:       m.GameID.Int64,
		LeagueCode:   m.LeagueCode,
		PostedAt:     m.PostedAt,
		Text:         m.Text,
		MediaURL:     m.MediaURL,
		MediaType:    m.MediaType,
		HasVideo:     m.HasVideo,
		RevealLevel:  social.RevealLevel(m.RevealLevel),
		RevealReason: m.RevealReason,
	}
}

type SocialPostRepository struct {
	db *sqlx.DB
}

func NewSocialPostRepository(db *sqlx.DB) *SocialPostRepository {
	return &SocialPostRepository{db: db}
}

type socialPostInsertModel struct {
	Platform     string        `db:"platform"`
	ExternalID   string        `db:"external_id"`
	Handle       string        `db:"handle"`
	TeamID       sql.NullInt64 `db:"team_id"`
	GameID       sql.NullInt64 `db:"game_id"`
	LeagueCode   string        `db:"league_code"`
	PostedAt     time.Time     `db:"posted_at"`
	Text         string        `db:"text"`
	MediaURL     string        `db:"media_url"`
	MediaType    string        `db:"media_type"`
	HasVideo     bool          `db:"has_video"`
	RevealLevel  string        `db:"reveal_level"`
	RevealReason string        `db:"reveal_reason"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (r *SocialPostRepository) Upsert(ctx context.Context, post social.Post) error {
	now := time.Now().UTC()
	insertModel := socialPostInsertModel{
		Platform:     post.Platform,
		ExternalID:   post.ExternalID,
		Handle:       post.Handle,
		TeamID:       int64ToNullInt64(post.TeamID),
		GameID:       int64ToNullInt64(post.GameID),
		LeagueCode:   post.LeagueCode,
		PostedAt:     post.PostedAt.UTC(),
		Text:         post.Text,
		MediaURL:     post.MediaURL,
		MediaType:    post.MediaType,
		HasVideo:     post.HasVideo,
		RevealLevel:  string(post.RevealLevel),
		RevealReason: post.RevealReason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The reveal columns only move pre -> post on conflict; a looser
	// classification never overwrites a stricter stored one.
	query, args, err := qb.InsertModel("social_posts", insertModel, `ON CONFLICT (platform, external_id)
DO UPDATE SET
	handle = EXCLUDED.handle,
	team_id = COALESCE(EXCLUDED.team_id, social_posts.team_id),
	game_id = COALESCE(EXCLUDED.game_id, social_posts.game_id),
	league_code = EXCLUDED.league_code,
	posted_at = EXCLUDED.posted_at,
	text = EXCLUDED.text,
	media_url = EXCLUDED.media_url,
	media_type = EXCLUDED.media_type,
	has_video = EXCLUDED.has_video,
	reveal_level = CASE
		WHEN social_posts.reveal_level = 'pre' AND EXCLUDED.reveal_level = 'post' THEN EXCLUDED.reveal_level
		ELSE social_posts.reveal_level
	END,
	reveal_reason = CASE
		WHEN social_posts.reveal_level = 'pre' AND EXCLUDED.reveal_level = 'post' THEN EXCLUDED.reveal_reason
		ELSE social_posts.reveal_reason
	END,
	updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert social post query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert social post: %w", err)
	}
	return nil
}

func (r *SocialPostRepository) ListByGame(ctx context.Context, gameID int64) ([]social.Post, error) {
	query, args, err := qb.Select("*").From("social_posts").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("posted_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select social posts query: %w", err)
	}

	var rows []socialPostTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select social posts: %w", err)
	}

	out := make([]social.Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SocialPostRepository) ReclassifyStricter(ctx context.Context, platform, externalID string, reason string) error {
	query, args, err := qb.Update("social_posts").
		Set("reveal_level", string(social.RevealPost)).
		Set("reveal_reason", reason).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("platform", platform),
			qb.Eq("external_id", externalID),
			qb.Eq("reveal_level", string(social.RevealPre)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reclassify social post query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("reclassify social post: %w", err)
	}
	return nil
}

func int64ToNullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}
