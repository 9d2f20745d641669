package account

import "context"

type Repository interface {
	ListActive(ctx context.Context, platform string) ([]RegistryEntry, error)
	List(ctx context.Context) ([]RegistryEntry, error)
	GetByTeamPlatform(ctx context.Context, teamID int64, platform string) (RegistryEntry, bool, error)
}
