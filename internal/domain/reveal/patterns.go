package reveal

import "regexp"

// PatternTableVersion identifies the rule set below. Bump it whenever a
// pattern is added or changed so stored reveal decisions can be audited
// against the rules that produced them.
const PatternTableVersion = "v1"

// Score lines: "112-108", "W 112-108", "Final: 112-108". Providers use
// hyphen, en dash, or em dash interchangeably.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{2,3}\s*[-–—]\s*\d{2,3}\b`),
	regexp.MustCompile(`(?i)\b[WL]\s*\d{2,3}\s*[-–—]\s*\d{2,3}\b`),
	regexp.MustCompile(`(?i)final\s*:?\s*\d{2,3}\s*[-–—]\s*\d{2,3}`),
}

// Keywords indicating game conclusion.
var finalKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfinal\b`),
	regexp.MustCompile(`(?i)\bfinal score\b`),
	regexp.MustCompile(`(?i)\bend of (game|regulation)\b`),
	regexp.MustCompile(`(?i)\bgame over\b`),
	regexp.MustCompile(`(?i)\bwe win\b`),
	regexp.MustCompile(`(?i)\bwe lose\b`),
	regexp.MustCompile(`(?i)\bvictory\b`),
	regexp.MustCompile(`(?i)\bdefeat\b`),
	regexp.MustCompile(`(?i)\bwin streak\b`),
	regexp.MustCompile(`(?i)\blose streak\b`),
}

// Recap/summary content.
var recapPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brecap\b`),
	regexp.MustCompile(`(?i)\bgame recap\b`),
	regexp.MustCompile(`(?i)\bpost-?game\b`),
	regexp.MustCompile(`(?i)\bfull (game )?highlights\b`),
	regexp.MustCompile(`(?i)\bgame summary\b`),
}

// Safe patterns downgrade to pre only when nothing above matched.
var safePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\blineup\b`),
	regexp.MustCompile(`(?i)\bstarting (five|lineup)\b`),
	regexp.MustCompile(`(?i)\binjury update\b`),
	regexp.MustCompile(`(?i)\bstatus update\b`),
	regexp.MustCompile(`(?i)\bwe'?re underway\b`),
	regexp.MustCompile(`(?i)\bgame time\b`),
	regexp.MustCompile(`(?i)\btip-?off\b`),
	regexp.MustCompile(`(?i)\bwarm-?ups\b`),
}

// Emojis often used alongside scoring or outcomes.
var scoreEmojiPattern = regexp.MustCompile(`[🏆✅🎉🚨]`)
