package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/scorewatch/scorewatch/internal/domain/odds"
)

type OddsRepository struct {
	mu    sync.RWMutex
	items map[string]odds.Snapshot
}

func NewOddsRepository() *OddsRepository {
	return &OddsRepository{items: make(map[string]odds.Snapshot)}
}

func snapshotKey(item odds.Snapshot) string {
	return fmt.Sprintf("%d|%s|%s|%d", item.GameID, item.Book, item.MarketType, item.CapturedAt.UTC().Unix())
}

func (r *OddsRepository) UpsertSnapshots(_ context.Context, items []odds.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[snapshotKey(item)] = item
	}
	return nil
}

func (r *OddsRepository) ListByGame(_ context.Context, gameID int64) ([]odds.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]odds.Snapshot, 0)
	for _, item := range r.items {
		if item.GameID == gameID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out, nil
}
