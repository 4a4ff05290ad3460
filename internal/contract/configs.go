package contract

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/mrpulse/mrpulse/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 50
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultBaseURL     = "https://gitlab.com/api/v4"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ClassifierRawInput holds optional bot-registry overrides from the YAML
// config file. Durations are strings like "10m" or "90s".
type ClassifierRawInput struct {
	BotUsernames       []string `mapstructure:"bot_usernames"`
	BotSuffixes        []string `mapstructure:"bot_suffixes"`
	HybridReviewers    []string `mapstructure:"hybrid_reviewers"`
	BurstCount         *int     `mapstructure:"burst_count"`
	BurstWindow        *string  `mapstructure:"burst_window"`
	FastResponseWindow *string  `mapstructure:"fast_response_window"`
	AIPatterns         []string `mapstructure:"ai_patterns"`
	MinAICommentLength *int     `mapstructure:"min_ai_comment_length"`
	CIPatterns         []string `mapstructure:"ci_patterns"`
}

// TypesRawInput holds optional MR-type threshold overrides.
type TypesRawInput struct {
	DraftHours     *float64 `mapstructure:"draft_hours"`
	ActiveDevHours *float64 `mapstructure:"active_dev_hours"`
}

// Config holds the runtime configuration for an analysis run.
// This struct is the final, validated config.
type Config struct {
	BaseURL   string
	Token     string
	ProjectID string
	MRIIDs    []int

	Workers     int
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	ShowEvents bool
	AIOnly     bool

	Sort   *schema.SortSpec
	Filter *schema.BatchFilter

	Classifier schema.ClassifierConfig
	Types      schema.TypeThresholds

	UseEmojis bool
	UseColors bool
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.MRIIDs != nil {
		clone.MRIIDs = append([]int(nil), c.MRIIDs...)
	}
	if c.Sort != nil {
		s := *c.Sort
		clone.Sort = &s
	}
	if c.Filter != nil {
		f := *c.Filter
		if c.Filter.Phases != nil {
			f.Phases = make(map[schema.Phase]schema.PhaseBound, len(c.Filter.Phases))
			for k, v := range c.Filter.Phases {
				f.Phases[k] = v
			}
		}
		clone.Filter = &f
	}
	return &clone
}

// ConfigRawInput holds the raw inputs from all sources (flags, env,
// config file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// Positional args, set manually, so no tags
	ProjectIDStr string
	IIDArgs      []string

	// --- Fields from rootCmd.PersistentFlags() ---
	BaseURL    string `mapstructure:"base-url"`
	Token      string `mapstructure:"token"`
	Workers    int    `mapstructure:"workers"`
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Emoji      string `mapstructure:"emoji"`
	Color      string `mapstructure:"color"`

	// --- Fields from timelineCmd.Flags() ---
	Events bool `mapstructure:"events"`

	// --- Fields from batchCmd.Flags() ---
	IIDs          string   `mapstructure:"iids"`
	Sort          string   `mapstructure:"sort"`
	Order         string   `mapstructure:"order"`
	Author        string   `mapstructure:"author"`
	Status        string   `mapstructure:"status"`
	MinCycleDays  string   `mapstructure:"min-cycle-days"`
	MaxCycleDays  string   `mapstructure:"max-cycle-days"`
	CreatedAfter  string   `mapstructure:"created-after"`
	CreatedBefore string   `mapstructure:"created-before"`
	PhaseFilters  []string `mapstructure:"phase-filter"`
	AIOnly        bool     `mapstructure:"ai-only"`

	// --- Structured sections from the config file ---
	Classifier ClassifierRawInput `mapstructure:"classifier"`
	Types      TypesRawInput      `mapstructure:"types"`
}

// ProcessAndValidate converts the raw input into the final Config.
// All malformed filter/sort input surfaces as *ValidationError before
// any network I/O happens.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// 1. Connection settings
	cfg.BaseURL = strings.TrimRight(input.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Token = input.Token
	cfg.ProjectID = input.ProjectIDStr

	// 2. Simple numeric settings
	cfg.Workers = input.Workers
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	cfg.ResultLimit = input.Limit
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}
	if cfg.ResultLimit > MaxResultLimit {
		cfg.ResultLimit = MaxResultLimit
	}
	cfg.Precision = input.Precision
	if cfg.Precision < 0 {
		cfg.Precision = DefaultPrecision
	}
	cfg.Width = input.Width

	// 3. Output mode
	out := schema.OutputMode(strings.ToLower(input.Output))
	if out == "" {
		out = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[out]; !ok {
		return &ValidationError{Field: "output", Reason: fmt.Sprintf("unknown output mode %q", input.Output)}
	}
	cfg.Output = out
	cfg.OutputFile = input.OutputFile

	// 4. Boolean-ish string flags
	cfg.UseEmojis = parseBoolFlag(input.Emoji, false)
	cfg.UseColors = parseBoolFlag(input.Color, true)
	cfg.ShowEvents = input.Events
	cfg.AIOnly = input.AIOnly

	// 5. MR iids from positional args and/or --iids
	iids, err := parseIIDs(input.IIDArgs, input.IIDs)
	if err != nil {
		return err
	}
	cfg.MRIIDs = iids

	// 6. Sort spec
	sortSpec, err := parseSortSpec(input.Sort, input.Order)
	if err != nil {
		return err
	}
	cfg.Sort = sortSpec

	// 7. Row filters
	filter, err := parseFilter(input)
	if err != nil {
		return err
	}
	cfg.Filter = filter

	// 8. Classifier and type thresholds: defaults plus overrides
	cfg.Classifier = resolveClassifier(&input.Classifier)
	cfg.Types = resolveTypes(&input.Types)

	return nil
}

// parseBoolFlag interprets yes/no style string flags.
func parseBoolFlag(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return def
	}
}

// parseIIDs merges positional iid args with the comma-separated --iids flag.
func parseIIDs(args []string, flagVal string) ([]int, error) {
	raw := append([]string{}, args...)
	if flagVal != "" {
		raw = append(raw, strings.Split(flagVal, ",")...)
	}
	iids := make([]int, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, &ValidationError{Field: "iids", Reason: fmt.Sprintf("%q is not a positive integer", s)}
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		iids = append(iids, n)
	}
	return iids, nil
}

// ParseIIDList parses a comma-separated iid list. The MCP layer receives
// iids as a single string argument instead of positional args.
func ParseIIDList(csv string) ([]int, error) {
	return parseIIDs(nil, csv)
}

// ParseSortSpec validates a sort field and order pair.
func ParseSortSpec(field, order string) (*schema.SortSpec, error) {
	return parseSortSpec(field, order)
}

// parseSortSpec validates the sort field and order flags.
func parseSortSpec(field, order string) (*schema.SortSpec, error) {
	if field == "" {
		return nil, nil
	}
	f := schema.SortField(strings.ToLower(field))
	if _, ok := schema.ValidSortFields[f]; !ok {
		return nil, &ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort field %q", field)}
	}
	spec := &schema.SortSpec{Field: f}
	switch strings.ToLower(order) {
	case "", "asc":
	case "desc":
		spec.Descending = true
	default:
		return nil, &ValidationError{Field: "order", Reason: fmt.Sprintf("order must be asc or desc, got %q", order)}
	}
	return spec, nil
}

// parseFilter assembles the batch row filter from the raw inputs.
func parseFilter(input *ConfigRawInput) (*schema.BatchFilter, error) {
	f := &schema.BatchFilter{
		Author: input.Author,
		Status: input.Status,
	}
	var err error
	if f.MinCycleDays, err = parseOptionalFloat("min-cycle-days", input.MinCycleDays); err != nil {
		return nil, err
	}
	if f.MaxCycleDays, err = parseOptionalFloat("max-cycle-days", input.MaxCycleDays); err != nil {
		return nil, err
	}
	if f.MinCycleDays != nil && f.MaxCycleDays != nil && *f.MinCycleDays > *f.MaxCycleDays {
		return nil, &ValidationError{Field: "min-cycle-days", Reason: "min exceeds max"}
	}
	if f.CreatedAfter, err = parseOptionalDate("created-after", input.CreatedAfter); err != nil {
		return nil, err
	}
	if f.CreatedBefore, err = parseOptionalDate("created-before", input.CreatedBefore); err != nil {
		return nil, err
	}
	if f.CreatedAfter != nil && f.CreatedBefore != nil && f.CreatedAfter.After(*f.CreatedBefore) {
		return nil, &ValidationError{Field: "created-after", Reason: "start date is after end date"}
	}
	if len(input.PhaseFilters) > 0 {
		phases, err := ParsePhaseFilters(input.PhaseFilters)
		if err != nil {
			return nil, err
		}
		f.Phases = phases
	}
	if isEmptyFilter(f) {
		return nil, nil
	}
	return f, nil
}

func isEmptyFilter(f *schema.BatchFilter) bool {
	return f.Author == "" && f.Status == "" &&
		f.MinCycleDays == nil && f.MaxCycleDays == nil &&
		f.CreatedAfter == nil && f.CreatedBefore == nil &&
		len(f.Phases) == 0
}

// ParsePhaseFilters parses conditions of the form
// "<phase>-<percent|days>-<min|max>=<value>", e.g. "review-percent-min=50".
// Contradictory min/max bounds for the same phase metric are rejected.
func ParsePhaseFilters(entries []string) (map[schema.Phase]schema.PhaseBound, error) {
	phases := make(map[schema.Phase]schema.PhaseBound)
	for _, entry := range entries {
		key, valStr, found := strings.Cut(entry, "=")
		if !found {
			return nil, &ValidationError{Field: "phase-filter", Reason: fmt.Sprintf("%q is not key=value", entry)}
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(valStr), 64)
		if err != nil || val < 0 {
			return nil, &ValidationError{Field: "phase-filter", Reason: fmt.Sprintf("%q needs a non-negative number", entry)}
		}

		parts := strings.Split(strings.TrimSpace(key), "-")
		if len(parts) != 3 {
			return nil, &ValidationError{Field: "phase-filter", Reason: fmt.Sprintf("%q is not <phase>-<metric>-<bound>", key)}
		}
		phase := schema.Phase(parts[0])
		valid := false
		for _, p := range schema.AllPhases {
			if p == phase {
				valid = true
				break
			}
		}
		if !valid {
			return nil, &ValidationError{Field: "phase-filter", Reason: fmt.Sprintf("unknown phase %q", parts[0])}
		}

		bound := phases[phase]
		switch parts[1] + "-" + parts[2] {
		case "percent-min":
			bound.MinPercent = &val
		case "percent-max":
			bound.MaxPercent = &val
		case "days-min":
			bound.MinDays = &val
		case "days-max":
			bound.MaxDays = &val
		default:
			return nil, &ValidationError{Field: "phase-filter", Reason: fmt.Sprintf("unknown condition %q", key)}
		}
		phases[phase] = bound
	}

	// Cross-check min/max consistency per phase metric.
	for phase, b := range phases {
		if b.MinPercent != nil && b.MaxPercent != nil && *b.MinPercent > *b.MaxPercent {
			return nil, &ValidationError{Field: string(phase) + "-percent-min", Reason: "min exceeds max"}
		}
		if b.MinDays != nil && b.MaxDays != nil && *b.MinDays > *b.MaxDays {
			return nil, &ValidationError{Field: string(phase) + "-days-min", Reason: "min exceeds max"}
		}
	}
	return phases, nil
}

func parseOptionalFloat(field, s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("%q needs a non-negative number", s)}
	}
	return &v, nil
}

// parseOptionalDate accepts RFC3339 timestamps or plain dates.
func parseOptionalDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not an ISO8601 date", s)}
}

// resolveClassifier merges config-file overrides over the defaults.
func resolveClassifier(raw *ClassifierRawInput) schema.ClassifierConfig {
	cc := schema.DefaultClassifierConfig()
	if len(raw.BotUsernames) > 0 {
		cc.BotUsernames = raw.BotUsernames
	}
	if len(raw.BotSuffixes) > 0 {
		cc.BotSuffixes = raw.BotSuffixes
	}
	if len(raw.HybridReviewers) > 0 {
		cc.HybridReviewers = raw.HybridReviewers
	}
	if raw.BurstCount != nil && *raw.BurstCount > 0 {
		cc.BurstCount = *raw.BurstCount
	}
	if d, ok := parseOptionalDuration(raw.BurstWindow); ok {
		cc.BurstWindow = d
	}
	if d, ok := parseOptionalDuration(raw.FastResponseWindow); ok {
		cc.FastResponseWindow = d
	}
	if len(raw.AIPatterns) > 0 {
		cc.AIPatterns = raw.AIPatterns
	}
	if raw.MinAICommentLength != nil && *raw.MinAICommentLength > 0 {
		cc.MinAICommentLength = *raw.MinAICommentLength
	}
	if len(raw.CIPatterns) > 0 {
		cc.CIPatterns = raw.CIPatterns
	}
	return cc
}

// resolveTypes merges config-file overrides over the defaults.
func resolveTypes(raw *TypesRawInput) schema.TypeThresholds {
	th := schema.DefaultTypeThresholds()
	if raw.DraftHours != nil && *raw.DraftHours > 0 {
		th.DraftHours = *raw.DraftHours
	}
	if raw.ActiveDevHours != nil && *raw.ActiveDevHours > 0 {
		th.ActiveDevHours = *raw.ActiveDevHours
	}
	return th
}

func parseOptionalDuration(s *string) (time.Duration, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return 0, false
	}
	d, err := time.ParseDuration(strings.TrimSpace(*s))
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
