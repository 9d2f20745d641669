package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scorewatch/scorewatch/internal/domain/social"
)

type SocialRepository struct {
	mu     sync.RWMutex
	items  map[string]social.Post
	nextID int64
}

func NewSocialRepository() *SocialRepository {
	return &SocialRepository{items: make(map[string]social.Post)}
}

func postKey(platform, externalID string) string {
	return platform + "|" + externalID
}

func (r *SocialRepository) Upsert(_ context.Context, post social.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := postKey(post.Platform, post.ExternalID)
	if stored, ok := r.items[key]; ok {
		post.ID = stored.ID
		if !social.Stricter(stored.RevealLevel, post.RevealLevel) {
			post.RevealLevel = stored.RevealLevel
			post.RevealReason = stored.RevealReason
		}
		r.items[key] = post
		return nil
	}

	r.nextID++
	post.ID = r.nextID
	r.items[key] = post
	return nil
}

func (r *SocialRepository) ListByGame(_ context.Context, gameID int64) ([]social.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]social.Post, 0)
	for _, item := range r.items {
		if item.GameID == gameID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PostedAt.Equal(out[j].PostedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].PostedAt.Before(out[j].PostedAt)
	})
	return out, nil
}

func (r *SocialRepository) ReclassifyStricter(_ context.Context, platform, externalID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := postKey(platform, externalID)
	stored, ok := r.items[key]
	if !ok {
		return nil
	}
	if social.Stricter(stored.RevealLevel, social.RevealPost) {
		stored.RevealLevel = social.RevealPost
		stored.RevealReason = reason
		r.items[key] = stored
	}
	return nil
}

// PostByExternalID is a test helper for asserting stored classifications.
func (r *SocialRepository) PostByExternalID(platform, externalID string) (social.Post, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[postKey(platform, externalID)]
	return item, ok
}

// All returns every stored post ordered by posted_at.
func (r *SocialRepository) All() []social.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]social.Post, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostedAt.Before(out[j].PostedAt) })
	return out
}
