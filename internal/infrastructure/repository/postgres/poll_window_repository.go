package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/internal/domain/pollwindow"
	qb "github.com/scorewatch/scorewatch/internal/platform/querybuilder"
)

type pollWindowTableModel struct {
	ID               int64      `db:"id"`
	Platform         string     `db:"platform"`
	Handle           string     `db:"handle"`
	WindowStart      time.Time  `db:"window_start"`
	WindowEnd        time.Time  `db:"window_end"`
	Status           string     `db:"status"`
	PostsFound       int        `db:"posts_found"`
	RateLimitedUntil *time.Time `db:"rate_limited_until"`
	ErrorDetail      string     `db:"error_detail"`
	Attempts         int        `db:"attempts"`
	UpdatedAt        time.Time  `db:"updated_at"`
	CreatedAt        time.Time  `db:"created_at"`
}

type PollWindowRepository struct {
	db *sqlx.DB
}

func NewPollWindowRepository(db *sqlx.DB) *PollWindowRepository {
	return &PollWindowRepository{db: db}
}

func (r *PollWindowRepository) Get(ctx context.Context, platform, handle string, start, end time.Time) (pollwindow.Window, bool, error) {
	query, args, err := qb.Select("*").From("poll_windows").
		Where(
			qb.Eq("platform", platform),
			qb.Eq("handle", handle),
			qb.Eq("window_start", start.UTC()),
			qb.Eq("window_end", end.UTC()),
		).
		ToSQL()
	if err != nil {
		return pollwindow.Window{}, false, fmt.Errorf("build select poll window query: %w", err)
	}

	var row pollWindowTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pollwindow.Window{}, false, nil
		}
		return pollwindow.Window{}, false, fmt.Errorf("select poll window: %w", err)
	}

	return pollwindow.Window{
		Platform:         row.Platform,
		Handle:           row.Handle,
		WindowStart:      row.WindowStart,
		WindowEnd:        row.WindowEnd,
		Status:           pollwindow.Status(row.Status),
		PostsFound:       row.PostsFound,
		RateLimitedUntil: row.RateLimitedUntil,
		ErrorDetail:      row.ErrorDetail,
		Attempts:         row.Attempts,
		UpdatedAt:        row.UpdatedAt,
	}, true, nil
}

type pollWindowInsertModel struct {
	Platform         string     `db:"platform"`
	Handle           string     `db:"handle"`
	WindowStart      time.Time  `db:"window_start"`
	WindowEnd        time.Time  `db:"window_end"`
	Status           string     `db:"status"`
	PostsFound       int        `db:"posts_found"`
	RateLimitedUntil *time.Time `db:"rate_limited_until"`
	ErrorDetail      string     `db:"error_detail"`
	Attempts         int        `db:"attempts"`
	UpdatedAt        time.Time  `db:"updated_at"`
	CreatedAt        time.Time  `db:"created_at"`
}

func (r *PollWindowRepository) Upsert(ctx context.Context, window pollwindow.Window) error {
	now := time.Now().UTC()
	updatedAt := window.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	insertModel := pollWindowInsertModel{
		Platform:         window.Platform,
		Handle:           window.Handle,
		WindowStart:      window.WindowStart.UTC(),
		WindowEnd:        window.WindowEnd.UTC(),
		Status:           string(window.Status),
		PostsFound:       window.PostsFound,
		RateLimitedUntil: window.RateLimitedUntil,
		ErrorDetail:      window.ErrorDetail,
		Attempts:         window.Attempts,
		UpdatedAt:        updatedAt,
		CreatedAt:        now,
	}

	query, args, err := qb.InsertModel("poll_windows", insertModel, `ON CONFLICT (platform, handle, window_start, window_end)
DO UPDATE SET
	status = EXCLUDED.status,
	posts_found = EXCLUDED.posts_found,
	rate_limited_until = EXCLUDED.rate_limited_until,
	error_detail = EXCLUDED.error_detail,
	attempts = EXCLUDED.attempts,
	updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert poll window query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert poll window: %w", err)
	}
	return nil
}
