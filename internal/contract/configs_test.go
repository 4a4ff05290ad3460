package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrpulse/mrpulse/schema"
)

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{ProjectIDStr: "42"}

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "42", cfg.ProjectID)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultResultLimit, cfg.ResultLimit)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.False(t, cfg.UseEmojis)
	assert.True(t, cfg.UseColors)
	assert.Nil(t, cfg.Sort)
	assert.Nil(t, cfg.Filter)
	assert.Equal(t, schema.DefaultClassifierConfig(), cfg.Classifier)
	assert.Equal(t, schema.DefaultTypeThresholds(), cfg.Types)
}

func TestProcessAndValidateOverrides(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{
		ProjectIDStr: "group/repo",
		BaseURL:      "https://git.example.com/api/v4/",
		Token:        "glpat-abc",
		Workers:      8,
		Limit:        2000,
		Precision:    3,
		Output:       "JSON",
		OutputFile:   "out.json",
		Emoji:        "yes",
		Color:        "off",
	}

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "https://git.example.com/api/v4", cfg.BaseURL)
	assert.Equal(t, "glpat-abc", cfg.Token)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, MaxResultLimit, cfg.ResultLimit)
	assert.Equal(t, 3, cfg.Precision)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Equal(t, "out.json", cfg.OutputFile)
	assert.True(t, cfg.UseEmojis)
	assert.False(t, cfg.UseColors)
}

func TestProcessAndValidateUnknownOutput(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{ProjectIDStr: "42", Output: "xml"}

	err := ProcessAndValidate(cfg, input)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "output", validation.Field)
}

func TestParseIIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		flag    string
		want    []int
		wantErr bool
	}{
		{"positional only", []string{"1", "2"}, "", []int{1, 2}, false},
		{"flag only", nil, "3,4,5", []int{3, 4, 5}, false},
		{"merged and deduplicated", []string{"1", "2"}, "2, 3", []int{1, 2, 3}, false},
		{"blank entries skipped", nil, "1,,2, ", []int{1, 2}, false},
		{"none", nil, "", []int{}, false},
		{"not a number", []string{"abc"}, "", nil, true},
		{"zero", nil, "0", nil, true},
		{"negative", []string{"-5"}, "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIIDs(tt.args, tt.flag)
			if tt.wantErr {
				var validation *ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, "iids", validation.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSortSpec(t *testing.T) {
	t.Run("empty field means no sort", func(t *testing.T) {
		spec, err := ParseSortSpec("", "desc")
		require.NoError(t, err)
		assert.Nil(t, spec)
	})

	t.Run("field with default order", func(t *testing.T) {
		spec, err := ParseSortSpec("cycle_days", "")
		require.NoError(t, err)
		require.NotNil(t, spec)
		assert.Equal(t, schema.SortByCycleDays, spec.Field)
		assert.False(t, spec.Descending)
	})

	t.Run("descending uppercase", func(t *testing.T) {
		spec, err := ParseSortSpec("COMMITS", "DESC")
		require.NoError(t, err)
		assert.Equal(t, schema.SortByCommits, spec.Field)
		assert.True(t, spec.Descending)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseSortSpec("velocity", "asc")
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "sort", validation.Field)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := ParseSortSpec("cycle_days", "down")
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "order", validation.Field)
	})
}

func TestProcessAndValidateFilter(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{
		ProjectIDStr: "42",
		Author:       "dana",
		Status:       "merged",
		MinCycleDays: "1.5",
		CreatedAfter: "2024-01-01",
		PhaseFilters: []string{"review-percent-min=50", "review-days-max=10"},
	}

	require.NoError(t, ProcessAndValidate(cfg, input))
	require.NotNil(t, cfg.Filter)

	assert.Equal(t, "dana", cfg.Filter.Author)
	assert.Equal(t, "merged", cfg.Filter.Status)
	require.NotNil(t, cfg.Filter.MinCycleDays)
	assert.Equal(t, 1.5, *cfg.Filter.MinCycleDays)
	require.NotNil(t, cfg.Filter.CreatedAfter)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *cfg.Filter.CreatedAfter)

	bound := cfg.Filter.Phases[schema.PhaseReview]
	require.NotNil(t, bound.MinPercent)
	assert.Equal(t, 50.0, *bound.MinPercent)
	require.NotNil(t, bound.MaxDays)
	assert.Equal(t, 10.0, *bound.MaxDays)
}

func TestProcessAndValidateEmptyFilterIsNil(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, &ConfigRawInput{ProjectIDStr: "42"}))
	assert.Nil(t, cfg.Filter)
}

func TestProcessAndValidateFilterErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     ConfigRawInput
		wantField string
	}{
		{"bad min cycle days", ConfigRawInput{MinCycleDays: "fast"}, "min-cycle-days"},
		{"negative max cycle days", ConfigRawInput{MaxCycleDays: "-2"}, "max-cycle-days"},
		{"cycle min over max", ConfigRawInput{MinCycleDays: "9", MaxCycleDays: "3"}, "min-cycle-days"},
		{"bad date", ConfigRawInput{CreatedAfter: "yesterday"}, "created-after"},
		{"inverted dates", ConfigRawInput{CreatedAfter: "2024-06-01", CreatedBefore: "2024-01-01"}, "created-after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.ProjectIDStr = "42"
			err := ProcessAndValidate(&Config{}, &tt.input)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.wantField, validation.Field)
		})
	}
}

func TestParsePhaseFilters(t *testing.T) {
	t.Run("valid conditions", func(t *testing.T) {
		phases, err := ParsePhaseFilters([]string{
			"review-percent-min=50",
			"review-percent-max=90",
			"dev-days-min=0.5",
			"merge-days-max=2",
		})
		require.NoError(t, err)
		require.Len(t, phases, 3)

		review := phases[schema.PhaseReview]
		assert.Equal(t, 50.0, *review.MinPercent)
		assert.Equal(t, 90.0, *review.MaxPercent)
		assert.Equal(t, 0.5, *phases[schema.PhaseDev].MinDays)
		assert.Equal(t, 2.0, *phases[schema.PhaseMerge].MaxDays)
	})

	tests := []struct {
		name  string
		entry string
	}{
		{"missing value", "review-percent-min"},
		{"not a number", "review-percent-min=lots"},
		{"negative value", "review-percent-min=-5"},
		{"unknown phase", "qa-percent-min=10"},
		{"unknown metric", "review-hours-min=10"},
		{"malformed key", "review-min=10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePhaseFilters([]string{tt.entry})
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
		})
	}

	t.Run("min exceeds max", func(t *testing.T) {
		_, err := ParsePhaseFilters([]string{"wait-percent-min=80", "wait-percent-max=20"})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "wait-percent-min", validation.Field)
	})
}

func TestProcessAndValidateClassifierOverrides(t *testing.T) {
	burst := 5
	window := "20m"
	minLen := 300
	cfg := &Config{}
	input := &ConfigRawInput{
		ProjectIDStr: "42",
		Classifier: ClassifierRawInput{
			BotUsernames:       []string{"review-droid"},
			HybridReviewers:    []string{"alice"},
			BurstCount:         &burst,
			BurstWindow:        &window,
			MinAICommentLength: &minLen,
		},
		Types: TypesRawInput{DraftHours: floatPtr(12)},
	}

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []string{"review-droid"}, cfg.Classifier.BotUsernames)
	assert.Equal(t, []string{"alice"}, cfg.Classifier.HybridReviewers)
	assert.Equal(t, 5, cfg.Classifier.BurstCount)
	assert.Equal(t, 20*time.Minute, cfg.Classifier.BurstWindow)
	assert.Equal(t, 300, cfg.Classifier.MinAICommentLength)
	// Untouched fields keep their defaults.
	assert.Equal(t, schema.DefaultClassifierConfig().BotSuffixes, cfg.Classifier.BotSuffixes)
	assert.Equal(t, 12.0, cfg.Types.DraftHours)
	assert.Equal(t, schema.DefaultTypeThresholds().ActiveDevHours, cfg.Types.ActiveDevHours)
}

func TestParseBoolFlag(t *testing.T) {
	assert.True(t, parseBoolFlag("yes", false))
	assert.True(t, parseBoolFlag("ON", false))
	assert.True(t, parseBoolFlag("1", false))
	assert.False(t, parseBoolFlag("no", true))
	assert.False(t, parseBoolFlag("0", true))
	assert.True(t, parseBoolFlag("", true))
	assert.False(t, parseBoolFlag("maybe", false))
}

func TestConfigClone(t *testing.T) {
	min := 1.0
	orig := &Config{
		ProjectID: "42",
		MRIIDs:    []int{1, 2},
		Sort:      &schema.SortSpec{Field: schema.SortByCycleDays},
		Filter: &schema.BatchFilter{
			MinCycleDays: &min,
			Phases: map[schema.Phase]schema.PhaseBound{
				schema.PhaseReview: {MinPercent: &min},
			},
		},
	}

	clone := orig.Clone()
	clone.MRIIDs[0] = 99
	clone.Sort.Descending = true
	clone.Filter.Phases[schema.PhaseDev] = schema.PhaseBound{}

	assert.Equal(t, 1, orig.MRIIDs[0])
	assert.False(t, orig.Sort.Descending)
	assert.NotContains(t, orig.Filter.Phases, schema.PhaseDev)
}

func floatPtr(v float64) *float64 { return &v }
