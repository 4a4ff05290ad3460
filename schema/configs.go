package schema

import "time"

// Default heuristic thresholds. These are empirically tuned
// approximations; every one of them can be overridden from the config
// file, so nothing here should be treated as ground truth.
const (
	DefaultBurstCount          = 3
	DefaultBurstWindow         = 10 * time.Minute
	DefaultFastResponseWindow  = 2 * time.Minute
	DefaultMinAICommentLength  = 600
	DefaultDraftThresholdHours = 24
	DefaultActiveDevHours      = 48
)

// ClassifierConfig is the injected configuration for actor
// classification. It replaces any process-wide bot registry so tests can
// substitute fixtures.
type ClassifierConfig struct {
	// BotUsernames is the explicit allowlist of AI reviewer accounts.
	BotUsernames []string `mapstructure:"bot_usernames"`

	// BotSuffixes matches usernames by suffix, e.g. "-bot" or "[bot]".
	BotSuffixes []string `mapstructure:"bot_suffixes"`

	// HybridReviewers are humans who sometimes post AI-assisted reviews
	// and need per-comment disambiguation.
	HybridReviewers []string `mapstructure:"hybrid_reviewers"`

	// BurstCount is the K threshold: at least K reviews from the same
	// user inside BurstWindow marks the burst as AI-assisted.
	BurstCount  int           `mapstructure:"burst_count"`
	BurstWindow time.Duration `mapstructure:"burst_window"`

	// FastResponseWindow bounds the latency since MR creation or last
	// commit under which a hybrid reviewer's comment reads as AI-assisted.
	FastResponseWindow time.Duration `mapstructure:"fast_response_window"`

	// AIPatterns are content markers for generic AI-comment detection.
	AIPatterns []string `mapstructure:"ai_patterns"`

	// MinAICommentLength is the historical average comment length above
	// which a user's comments lean AI-generated.
	MinAICommentLength int `mapstructure:"min_ai_comment_length"`

	// CIPatterns are content markers for CI bot comments. CI detection
	// runs before any human/AI classification.
	CIPatterns []string `mapstructure:"ci_patterns"`
}

// TypeThresholds configures MR-type classification.
type TypeThresholds struct {
	// DraftHours is the minimum draft duration for a Draft MR.
	DraftHours float64 `mapstructure:"draft_hours"`

	// ActiveDevHours is the minimum development span, combined with a
	// re-draft marker, for an Active-Development MR.
	ActiveDevHours float64 `mapstructure:"active_dev_hours"`
}

// DefaultClassifierConfig returns the default bot registry and heuristic
// thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		BotUsernames: []string{
			"gitlab-ai-review",
			"coderabbitai",
			"sourcery-ai",
		},
		BotSuffixes: []string{"-bot", "[bot]", "_bot"},
		BurstCount:  DefaultBurstCount,
		BurstWindow: DefaultBurstWindow,

		FastResponseWindow: DefaultFastResponseWindow,
		// Patterns are matched against StripMarkdown output, so no
		// markdown punctuation here.
		AIPatterns: []string{
			"summary of changes",
			"walkthrough",
			"actionable comments posted",
			"generated by ai",
			"auto-generated review",
		},
		MinAICommentLength: DefaultMinAICommentLength,
		CIPatterns: []string{
			"pipeline",
			"build failed",
			"build succeeded",
			"coverage report",
			"code coverage",
			"quality gate",
		},
	}
}

// DefaultTypeThresholds returns the default MR-type thresholds.
func DefaultTypeThresholds() TypeThresholds {
	return TypeThresholds{
		DraftHours:     DefaultDraftThresholdHours,
		ActiveDevHours: DefaultActiveDevHours,
	}
}
