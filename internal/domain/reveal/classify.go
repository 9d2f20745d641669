package reveal

import "github.com/scorewatch/scorewatch/internal/domain/social"

// Reason codes recorded with every classification decision.
const (
	ReasonScorePattern   = "score_pattern"
	ReasonFinalKeyword   = "final_keyword"
	ReasonRecapPattern   = "recap_pattern"
	ReasonScoreEmoji     = "score_emoji"
	ReasonSafePattern    = "safe_pattern_matched"
	ReasonDefaultRisk    = "default_risk"
	ReasonDefaultNoText  = "default_no_text"
	ReasonPostGameTiming = "post_game_timing"
)

type Classification struct {
	Level          social.RevealLevel
	Reason         string
	MatchedPattern string
}

// Classify labels text conservatively: everything is reveal-risk unless it
// matches a safe pattern, and outcome detection outranks any safe match.
func Classify(text string) Classification {
	if text == "" {
		return Classification{Level: social.RevealPost, Reason: ReasonDefaultNoText}
	}

	for _, pattern := range scorePatterns {
		if pattern.MatchString(text) {
			return Classification{Level: social.RevealPost, Reason: ReasonScorePattern, MatchedPattern: pattern.String()}
		}
	}
	for _, pattern := range finalKeywords {
		if pattern.MatchString(text) {
			return Classification{Level: social.RevealPost, Reason: ReasonFinalKeyword, MatchedPattern: pattern.String()}
		}
	}
	for _, pattern := range recapPatterns {
		if pattern.MatchString(text) {
			return Classification{Level: social.RevealPost, Reason: ReasonRecapPattern, MatchedPattern: pattern.String()}
		}
	}
	if scoreEmojiPattern.MatchString(text) {
		return Classification{Level: social.RevealPost, Reason: ReasonScoreEmoji, MatchedPattern: scoreEmojiPattern.String()}
	}

	for _, pattern := range safePatterns {
		if pattern.MatchString(text) {
			return Classification{Level: social.RevealPre, Reason: ReasonSafePattern, MatchedPattern: pattern.String()}
		}
	}

	return Classification{Level: social.RevealPost, Reason: ReasonDefaultRisk}
}

// RevealsOutcome reports whether text exposes the game result (score lines,
// conclusion keywords, recap phrasing). Safe patterns are not consulted.
func RevealsOutcome(text string) bool {
	if text == "" {
		return false
	}
	for _, pattern := range scorePatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	for _, pattern := range finalKeywords {
		if pattern.MatchString(text) {
			return true
		}
	}
	for _, pattern := range recapPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
