package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrpulse/mrpulse/schema"
)

func testClassifierConfig() schema.ClassifierConfig {
	cfg := schema.DefaultClassifierConfig()
	cfg.HybridReviewers = []string{"alice"}
	return cfg
}

func TestClassify(t *testing.T) {
	mrCreated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	tests := []struct {
		name     string
		input    ClassifyInput
		wantAI   bool
		wantRole schema.Role
	}{
		{
			name: "known bot username",
			input: ClassifyInput{
				Username:    "coderabbitai",
				Body:        "short note",
				CreatedAt:   mrCreated.Add(3 * time.Hour),
				MRCreatedAt: mrCreated,
			},
			wantAI:   true,
			wantRole: schema.RoleAIReviewer,
		},
		{
			name: "bot suffix match",
			input: ClassifyInput{
				Username:    "renovate-bot",
				Body:        "short note",
				CreatedAt:   mrCreated.Add(3 * time.Hour),
				MRCreatedAt: mrCreated,
			},
			wantAI:   true,
			wantRole: schema.RoleAIReviewer,
		},
		{
			name: "author precedence beats bot registry",
			input: ClassifyInput{
				Username:    "coderabbitai",
				Body:        "replying to my own MR",
				CreatedAt:   mrCreated.Add(time.Hour),
				MRCreatedAt: mrCreated,
				IsAuthor:    true,
			},
			wantAI:   false,
			wantRole: schema.RoleAuthor,
		},
		{
			name: "hybrid fast response after creation",
			input: ClassifyInput{
				Username:    "alice",
				Body:        "quick look",
				CreatedAt:   mrCreated.Add(90 * time.Second),
				MRCreatedAt: mrCreated,
			},
			wantAI:   true,
			wantRole: schema.RoleAIReviewer,
		},
		{
			name: "hybrid slow response is human",
			input: ClassifyInput{
				Username:    "alice",
				Body:        "thought about this for a while",
				CreatedAt:   mrCreated.Add(3 * time.Hour),
				MRCreatedAt: mrCreated,
			},
			wantAI:   false,
			wantRole: schema.RoleReviewer,
		},
		{
			name: "hybrid burst of comments",
			input: ClassifyInput{
				Username:    "alice",
				Body:        "one of many",
				CreatedAt:   mrCreated.Add(3 * time.Hour),
				MRCreatedAt: mrCreated,
				RecentSameUser: []time.Time{
					mrCreated.Add(3*time.Hour - 2*time.Minute),
					mrCreated.Add(3*time.Hour - 5*time.Minute),
				},
			},
			wantAI:   true,
			wantRole: schema.RoleAIReviewer,
		},
		{
			name: "hybrid burst outside window is human",
			input: ClassifyInput{
				Username:    "alice",
				Body:        "spread out",
				CreatedAt:   mrCreated.Add(3 * time.Hour),
				MRCreatedAt: mrCreated,
				RecentSameUser: []time.Time{
					mrCreated.Add(time.Hour),
					mrCreated.Add(90 * time.Minute),
				},
			},
			wantAI:   false,
			wantRole: schema.RoleReviewer,
		},
		{
			name: "hybrid with prior AI review",
			input: ClassifyInput{
				Username:      "alice",
				Body:          "following up",
				CreatedAt:     mrCreated.Add(3 * time.Hour),
				MRCreatedAt:   mrCreated,
				PriorAIReview: true,
			},
			wantAI:   true,
			wantRole: schema.RoleAIReviewer,
		},
		{
			name: "content pattern from unknown user",
			input: ClassifyInput{
				Username:    "bob",
				Body:        "## Summary of Changes\n\nThis MR refactors the parser.",
				CreatedAt:   mrCreated.Add(3 * time.Hour),
				MRCreatedAt: mrCreated,
			},
			wantAI:   true,
			wantRole: schema.RoleAIReviewer,
		},
		{
			name: "long average comment length",
			input: ClassifyInput{
				Username:         "bob",
				Body:             "ordinary words",
				CreatedAt:        mrCreated.Add(3 * time.Hour),
				MRCreatedAt:      mrCreated,
				AvgCommentLength: 900,
			},
			wantAI:   true,
			wantRole: schema.RoleAIReviewer,
		},
		{
			name: "default human",
			input: ClassifyInput{
				Username:    "bob",
				Body:        "lgtm with a nit",
				CreatedAt:   mrCreated.Add(3 * time.Hour),
				MRCreatedAt: mrCreated,
			},
			wantAI:   false,
			wantRole: schema.RoleReviewer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := cl.Classify(tt.input)
			assert.Equal(t, tt.wantAI, decision.IsAIBot)
			assert.Equal(t, tt.wantRole, decision.Role)
		})
	}
}

func TestClassifyHybridCommitAnchor(t *testing.T) {
	mrCreated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cl := NewClassifier(testClassifierConfig())

	// Hours after creation, but seconds after the latest commit: the
	// latency anchor moves to the commit, so the response reads AI-assisted.
	lastCommit := mrCreated.Add(4 * time.Hour)
	decision := cl.Classify(ClassifyInput{
		Username:     "alice",
		Body:         "instant reaction to the new commit",
		CreatedAt:    lastCommit.Add(30 * time.Second),
		MRCreatedAt:  mrCreated,
		LastCommitAt: &lastCommit,
	})
	assert.True(t, decision.IsAIBot)
}

func TestIsCIContent(t *testing.T) {
	cl := NewClassifier(testClassifierConfig())

	assert.True(t, cl.IsCIContent("Pipeline #42 passed in 3m"))
	assert.True(t, cl.IsCIContent("**Coverage report**: 84.2%"))
	assert.False(t, cl.IsCIContent("LGTM, nice cleanup"))
}

func TestIsHybrid(t *testing.T) {
	cl := NewClassifier(testClassifierConfig())

	assert.True(t, cl.IsHybrid("Alice"))
	assert.False(t, cl.IsHybrid("bob"))
}
