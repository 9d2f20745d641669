package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scorewatch/scorewatch/internal/domain/account"
)

type AccountRepository struct {
	mu     sync.RWMutex
	items  []account.RegistryEntry
	nextID int64
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

func (r *AccountRepository) Seed(entries ...account.RegistryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		if entry.ID == 0 {
			r.nextID++
			entry.ID = r.nextID
		} else if entry.ID > r.nextID {
			r.nextID = entry.ID
		}
		r.items = append(r.items, entry)
	}
}

func (r *AccountRepository) ListActive(_ context.Context, platform string) ([]account.RegistryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]account.RegistryEntry, 0)
	for _, entry := range r.items {
		if entry.IsActive && entry.Platform == platform {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (r *AccountRepository) List(_ context.Context) ([]account.RegistryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]account.RegistryEntry, len(r.items))
	copy(out, r.items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].Handle < out[j].Handle
	})
	return out, nil
}

func (r *AccountRepository) GetByTeamPlatform(_ context.Context, teamID int64, platform string) (account.RegistryEntry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.items {
		if entry.TeamID == teamID && entry.Platform == platform {
			return entry, true, nil
		}
	}
	return account.RegistryEntry{}, false, nil
}
