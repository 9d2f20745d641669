package social

import (
	"strings"
	"time"
)

// RevealLevel marks whether a post is safe to show before the viewer knows
// the outcome.
type RevealLevel string

const (
	RevealPre  RevealLevel = "pre"
	RevealPost RevealLevel = "post"
)

func ParseRevealLevel(value string) (RevealLevel, bool) {
	switch RevealLevel(strings.ToLower(strings.TrimSpace(value))) {
	case RevealPre:
		return RevealPre, true
	case RevealPost:
		return RevealPost, true
	default:
		return "", false
	}
}

// Stricter reports whether next is a tightening of current. Classification
// corrections may only move pre -> post, never back.
func Stricter(current, next RevealLevel) bool {
	return current == RevealPre && next == RevealPost
}

// Post is one externally observed social post. (Platform, ExternalID) is the
// dedup key; a post is created once and immutable after classification apart
// from stricter reveal corrections.
type Post struct {
	ID           int64
	Platform     string
	ExternalID   string
	Handle       string
	TeamID       int64
	GameID       int64
	LeagueCode   string
	PostedAt     time.Time
	Text         string
	MediaURL     string
	MediaType    string
	HasVideo     bool
	RevealLevel  RevealLevel
	RevealReason string
}
