package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
)

// BootstrapSeed installs the default official-account registry when the
// table is empty. Rerunning is a no-op.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM social_accounts`); err != nil {
		return fmt.Errorf("count social accounts for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range memory.SeedAccounts() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO social_accounts (platform, handle, team_id, team_abbreviation, league_code, is_active)
VALUES (:platform, :handle, :team_id, :team_abbreviation, :league_code, :is_active)
ON CONFLICT (platform, handle) DO NOTHING`, map[string]any{
			"platform":          entry.Platform,
			"handle":            entry.Handle,
			"team_id":           entry.TeamID,
			"team_abbreviation": entry.TeamAbbreviation,
			"league_code":       entry.LeagueCode,
			"is_active":         entry.IsActive,
		})
		if err != nil {
			return fmt.Errorf("bind seed account %s/%s query: %w", entry.Platform, entry.Handle, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed account %s/%s: %w", entry.Platform, entry.Handle, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
