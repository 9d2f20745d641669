package memory

import (
	"context"
	"sync"
	"time"

	"github.com/scorewatch/scorewatch/internal/domain/pollwindow"
)

type PollWindowRepository struct {
	mu    sync.RWMutex
	items map[string]pollwindow.Window
}

func NewPollWindowRepository() *PollWindowRepository {
	return &PollWindowRepository{items: make(map[string]pollwindow.Window)}
}

func (r *PollWindowRepository) Get(_ context.Context, platform, handle string, start, end time.Time) (pollwindow.Window, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[pollwindow.Key(platform, handle, start, end)]
	return item, ok, nil
}

func (r *PollWindowRepository) Upsert(_ context.Context, window pollwindow.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[window.Key()] = window
	return nil
}

// Len is a test helper.
func (r *PollWindowRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
