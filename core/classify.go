package core

import (
	"strings"
	"time"

	"github.com/mrpulse/mrpulse/schema"
)

// Classifier decides whether a comment's actor is human, AI bot, or
// system, using an ordered list of heuristic tiers. The rule order is
// fixed and auditable; the first matching tier wins.
type Classifier struct {
	cfg       schema.ClassifierConfig
	botSet    map[string]struct{}
	hybridSet map[string]struct{}
}

// ClassifyInput carries everything a single classification needs:
// the comment itself, its timing context, and historical statistics for
// the commenting user within the same MR.
type ClassifyInput struct {
	Username    string
	Body        string
	CreatedAt   time.Time
	MRCreatedAt time.Time

	// LastCommitAt is the authored time of the most recent commit before
	// the comment, if any. Used for hybrid latency disambiguation.
	LastCommitAt *time.Time

	// AvgCommentLength is the mean body length across the user's
	// comments on this MR.
	AvgCommentLength float64

	// RecentSameUser holds timestamps of the user's other review
	// comments, for sliding-window burst detection.
	RecentSameUser []time.Time

	// PriorAIReview is true when a non-hybrid AI review already exists
	// earlier in the timeline.
	PriorAIReview bool

	// IsAuthor is true when the commenter is the MR author. Author
	// precedence overrides every bot heuristic.
	IsAuthor bool
}

// ActorDecision is the classification outcome.
type ActorDecision struct {
	IsAIBot bool
	Role    schema.Role
}

// NewClassifier builds a Classifier from an injected configuration.
// The bot registry is explicit configuration, never hidden global state.
func NewClassifier(cfg schema.ClassifierConfig) *Classifier {
	c := &Classifier{
		cfg:       cfg,
		botSet:    make(map[string]struct{}, len(cfg.BotUsernames)),
		hybridSet: make(map[string]struct{}, len(cfg.HybridReviewers)),
	}
	for _, u := range cfg.BotUsernames {
		c.botSet[strings.ToLower(u)] = struct{}{}
	}
	for _, u := range cfg.HybridReviewers {
		c.hybridSet[strings.ToLower(u)] = struct{}{}
	}
	return c
}

// Classify runs the heuristic tiers in order and returns the decision.
//
// Tier 1: explicit bot allowlist or username suffix.
// Tier 2: hybrid-reviewer disambiguation (latency, burst, prior AI review).
// Tier 3: generic content and length heuristics.
// Tier 4: default human.
//
// Author precedence: the MR author always classifies as RoleAuthor,
// regardless of which bot tier would otherwise fire.
func (c *Classifier) Classify(in ClassifyInput) ActorDecision {
	if in.IsAuthor {
		return ActorDecision{IsAIBot: false, Role: schema.RoleAuthor}
	}

	username := strings.ToLower(in.Username)

	// Tier 1: explicit registry
	if c.isKnownBot(username) {
		return ActorDecision{IsAIBot: true, Role: schema.RoleAIReviewer}
	}

	// Tier 2: hybrid reviewers need per-comment disambiguation
	if _, ok := c.hybridSet[username]; ok {
		if c.isHybridAIAssisted(in) {
			return ActorDecision{IsAIBot: true, Role: schema.RoleAIReviewer}
		}
		return ActorDecision{IsAIBot: false, Role: schema.RoleReviewer}
	}

	// Tier 3: generic content/length heuristics
	if c.looksGenerated(in) {
		return ActorDecision{IsAIBot: true, Role: schema.RoleAIReviewer}
	}

	// Tier 4: default
	return ActorDecision{IsAIBot: false, Role: schema.RoleReviewer}
}

// IsHybrid reports whether the username is in the hybrid-reviewer
// registry. The event builder uses this to track non-hybrid AI reviews.
func (c *Classifier) IsHybrid(username string) bool {
	_, ok := c.hybridSet[strings.ToLower(username)]
	return ok
}

// IsCIContent reports whether a note body reads like a CI bot message
// (build/pipeline/coverage phrasing). CI detection is independent of
// actor classification and runs before it.
func (c *Classifier) IsCIContent(body string) bool {
	normalized := schema.StripMarkdown(body)
	for _, p := range c.cfg.CIPatterns {
		if strings.Contains(normalized, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func (c *Classifier) isKnownBot(username string) bool {
	if _, ok := c.botSet[username]; ok {
		return true
	}
	for _, suffix := range c.cfg.BotSuffixes {
		if strings.HasSuffix(username, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// isHybridAIAssisted disambiguates a single comment from a known hybrid
// reviewer. Three signals, any of which marks the comment AI-assisted:
//
//	a) response latency: commenting within FastResponseWindow of MR
//	   creation or the latest commit is too fast for a manual review;
//	b) burst: at least BurstCount comments from the same user inside the
//	   sliding BurstWindow;
//	c) a non-hybrid AI review already happened earlier on this MR.
func (c *Classifier) isHybridAIAssisted(in ClassifyInput) bool {
	// a) latency since MR creation or last commit
	anchor := in.MRCreatedAt
	if in.LastCommitAt != nil && in.LastCommitAt.After(anchor) {
		anchor = *in.LastCommitAt
	}
	if !anchor.IsZero() && in.CreatedAt.Sub(anchor) >= 0 && in.CreatedAt.Sub(anchor) <= c.cfg.FastResponseWindow {
		return true
	}

	// b) burst of reviews inside the sliding window
	if c.inBurst(in.CreatedAt, in.RecentSameUser) {
		return true
	}

	// c) earlier non-hybrid AI review on the timeline
	return in.PriorAIReview
}

// inBurst counts the user's comments (this one included) inside the
// window ending at ts.
func (c *Classifier) inBurst(ts time.Time, others []time.Time) bool {
	if c.cfg.BurstCount <= 0 {
		return false
	}
	count := 1
	for _, other := range others {
		d := ts.Sub(other)
		if d < 0 {
			d = -d
		}
		if d <= c.cfg.BurstWindow {
			count++
		}
	}
	return count >= c.cfg.BurstCount
}

// looksGenerated applies the generic content and length heuristics.
func (c *Classifier) looksGenerated(in ClassifyInput) bool {
	normalized := schema.StripMarkdown(in.Body)
	for _, p := range c.cfg.AIPatterns {
		if strings.Contains(normalized, strings.ToLower(p)) {
			return true
		}
	}
	return c.cfg.MinAICommentLength > 0 && in.AvgCommentLength >= float64(c.cfg.MinAICommentLength)
}
