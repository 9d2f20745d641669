package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/scorewatch/scorewatch/internal/domain/pbp"
)

type PBPRepository struct {
	mu    sync.RWMutex
	items map[string]pbp.Event
}

func NewPBPRepository() *PBPRepository {
	return &PBPRepository{items: make(map[string]pbp.Event)}
}

func eventKey(item pbp.Event) string {
	return fmt.Sprintf("%d|%d|%d", item.GameID, item.Period, item.Sequence)
}

func (r *PBPRepository) UpsertEvents(_ context.Context, events []pbp.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range events {
		r.items[eventKey(item)] = item
	}
	return nil
}

func (r *PBPRepository) ListByGame(_ context.Context, gameID int64) ([]pbp.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pbp.Event, 0)
	for _, item := range r.items {
		if item.GameID == gameID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

func (r *PBPRepository) CountByGame(_ context.Context, gameID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, item := range r.items {
		if item.GameID == gameID {
			count++
		}
	}
	return count, nil
}
