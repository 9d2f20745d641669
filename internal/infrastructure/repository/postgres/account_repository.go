package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/internal/domain/account"
	qb "github.com/scorewatch/scorewatch/internal/platform/querybuilder"
)

type socialAccountTableModel struct {
	ID               int64  `db:"id"`
	Platform         string `db:"platform"`
	Handle           string `db:"handle"`
	TeamID           int64  `db:"team_id"`
	TeamAbbreviation string `db:"team_abbreviation"`
	LeagueCode       string `db:"league_code"`
	IsActive         bool   `db:"is_active"`
}

func (m socialAccountTableModel) toDomain() account.RegistryEntry {
	return account.RegistryEntry{
		ID:               m.ID,
		Platform:         m.Platform,
		Handle:           m.Handle,
		TeamID:           m.TeamID,
		TeamAbbreviation: m.TeamAbbreviation,
		LeagueCode:       m.LeagueCode,
		IsActive:         m.IsActive,
	}
}

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) ListActive(ctx context.Context, platform string) ([]account.RegistryEntry, error) {
	query, args, err := qb.Select("id", "platform", "handle", "team_id", "team_abbreviation", "league_code", "is_active").
		From("social_accounts").
		Where(qb.Eq("platform", platform), qb.Eq("is_active", true)).
		OrderBy("handle").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active accounts query: %w", err)
	}

	return r.selectAccounts(ctx, query, args)
}

func (r *AccountRepository) List(ctx context.Context) ([]account.RegistryEntry, error) {
	query, args, err := qb.Select("id", "platform", "handle", "team_id", "team_abbreviation", "league_code", "is_active").
		From("social_accounts").
		OrderBy("platform", "handle").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select accounts query: %w", err)
	}

	return r.selectAccounts(ctx, query, args)
}

func (r *AccountRepository) GetByTeamPlatform(ctx context.Context, teamID int64, platform string) (account.RegistryEntry, bool, error) {
	query, args, err := qb.Select("id", "platform", "handle", "team_id", "team_abbreviation", "league_code", "is_active").
		From("social_accounts").
		Where(qb.Eq("team_id", teamID), qb.Eq("platform", platform)).
		Limit(1).
		ToSQL()
	if err != nil {
		return account.RegistryEntry{}, false, fmt.Errorf("build select account query: %w", err)
	}

	var row socialAccountTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return account.RegistryEntry{}, false, nil
		}
		return account.RegistryEntry{}, false, fmt.Errorf("select account: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AccountRepository) selectAccounts(ctx context.Context, query string, args []any) ([]account.RegistryEntry, error) {
	var rows []socialAccountTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}

	out := make([]account.RegistryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
