package core

import (
	"fmt"
	"strings"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/schema"
)

// ValidateBatchInput rejects malformed batch requests before any fetch
// begins. Every violation is a *contract.ValidationError: fatal for the
// whole request, never for a single row.
func ValidateBatchInput(input *schema.BatchInput) error {
	if input.ProjectID == "" {
		return &contract.ValidationError{Field: "project_id", Reason: "must not be empty"}
	}
	if len(input.MRIIDs) == 0 {
		return &contract.ValidationError{Field: "mr_iids", Reason: "must list at least one MR iid"}
	}
	for _, iid := range input.MRIIDs {
		if iid <= 0 {
			return &contract.ValidationError{Field: "mr_iids", Reason: fmt.Sprintf("iid %d is not positive", iid)}
		}
	}
	if input.Limit < 0 {
		return &contract.ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	if input.Sort != nil {
		if _, ok := schema.ValidSortFields[input.Sort.Field]; !ok {
			return &contract.ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown sort field %q", input.Sort.Field)}
		}
	}
	if f := input.Filter; f != nil {
		if f.MinCycleDays != nil && f.MaxCycleDays != nil && *f.MinCycleDays > *f.MaxCycleDays {
			return &contract.ValidationError{Field: "cycle-days-min", Reason: "min exceeds max"}
		}
		if f.CreatedAfter != nil && f.CreatedBefore != nil && f.CreatedAfter.After(*f.CreatedBefore) {
			return &contract.ValidationError{Field: "created-after", Reason: "start date is after end date"}
		}
		for phase, b := range f.Phases {
			if b.MinPercent != nil && b.MaxPercent != nil && *b.MinPercent > *b.MaxPercent {
				return &contract.ValidationError{Field: string(phase) + "-percent-min", Reason: "min exceeds max"}
			}
			if b.MinDays != nil && b.MaxDays != nil && *b.MinDays > *b.MaxDays {
				return &contract.ValidationError{Field: string(phase) + "-days-min", Reason: "min exceeds max"}
			}
		}
	}
	return nil
}

// rowCondition is a single named filter predicate over one row.
type rowCondition struct {
	key  string
	pass func(*schema.MRComparisonRow) bool
}

// applyFilters drops successful rows violating any condition (AND
// semantics) and tracks how many rows each condition excluded, so an
// empty result can name the most restrictive condition. Failed rows
// bypass the filters; they carry error info the renderer must surface.
func applyFilters(rows []schema.MRComparisonRow, filter *schema.BatchFilter) ([]schema.MRComparisonRow, *schema.PhaseFilterStats) {
	if filter == nil {
		return rows, nil
	}
	conditions := buildConditions(filter)
	if len(conditions) == 0 {
		return rows, nil
	}

	stats := &schema.PhaseFilterStats{
		ExcludedByFilter: make(map[string]int),
	}

	kept := make([]schema.MRComparisonRow, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.Error != "" {
			kept = append(kept, *row)
			continue
		}
		pass := true
		for _, cond := range conditions {
			if !cond.pass(row) {
				stats.ExcludedByFilter[cond.key]++
				pass = false
			}
		}
		if pass {
			kept = append(kept, *row)
			stats.FilteredCount++
		}
	}

	stats.MostRestrictive = mostRestrictive(stats.ExcludedByFilter)
	return kept, stats
}

// buildConditions flattens the filter into the ordered condition list.
func buildConditions(filter *schema.BatchFilter) []rowCondition {
	var conditions []rowCondition

	if filter.Author != "" {
		needle := strings.ToLower(filter.Author)
		conditions = append(conditions, rowCondition{"author", func(r *schema.MRComparisonRow) bool {
			return strings.Contains(strings.ToLower(r.Author), needle)
		}})
	}
	if filter.Status != "" {
		status := strings.ToLower(filter.Status)
		conditions = append(conditions, rowCondition{"status", func(r *schema.MRComparisonRow) bool {
			return strings.ToLower(r.Status) == status
		}})
	}
	if v := filter.MinCycleDays; v != nil {
		minVal := *v
		conditions = append(conditions, rowCondition{"cycle-days-min", func(r *schema.MRComparisonRow) bool {
			return r.CycleDays >= minVal
		}})
	}
	if v := filter.MaxCycleDays; v != nil {
		maxVal := *v
		conditions = append(conditions, rowCondition{"cycle-days-max", func(r *schema.MRComparisonRow) bool {
			return r.CycleDays <= maxVal
		}})
	}
	if t := filter.CreatedAfter; t != nil {
		after := *t
		conditions = append(conditions, rowCondition{"created-after", func(r *schema.MRComparisonRow) bool {
			return !r.CreatedAt.Before(after)
		}})
	}
	if t := filter.CreatedBefore; t != nil {
		before := *t
		conditions = append(conditions, rowCondition{"created-before", func(r *schema.MRComparisonRow) bool {
			return !r.CreatedAt.After(before)
		}})
	}

	// Phase bounds in canonical order for deterministic evaluation.
	for _, phase := range schema.AllPhases {
		bound, ok := filter.Phases[phase]
		if !ok {
			continue
		}
		percent := phasePercentFunc(phase)
		days := phaseDaysFunc(phase)
		if v := bound.MinPercent; v != nil {
			minVal := *v
			conditions = append(conditions, rowCondition{string(phase) + "-percent-min", func(r *schema.MRComparisonRow) bool {
				return percent(r) >= minVal
			}})
		}
		if v := bound.MaxPercent; v != nil {
			maxVal := *v
			conditions = append(conditions, rowCondition{string(phase) + "-percent-max", func(r *schema.MRComparisonRow) bool {
				return percent(r) <= maxVal
			}})
		}
		if v := bound.MinDays; v != nil {
			minVal := *v
			conditions = append(conditions, rowCondition{string(phase) + "-days-min", func(r *schema.MRComparisonRow) bool {
				return days(r) >= minVal
			}})
		}
		if v := bound.MaxDays; v != nil {
			maxVal := *v
			conditions = append(conditions, rowCondition{string(phase) + "-days-max", func(r *schema.MRComparisonRow) bool {
				return days(r) <= maxVal
			}})
		}
	}
	return conditions
}

func phasePercentFunc(phase schema.Phase) func(*schema.MRComparisonRow) float64 {
	switch phase {
	case schema.PhaseDev:
		return func(r *schema.MRComparisonRow) float64 { return r.DevPercent }
	case schema.PhaseWait:
		return func(r *schema.MRComparisonRow) float64 { return r.WaitPercent }
	case schema.PhaseReview:
		return func(r *schema.MRComparisonRow) float64 { return r.ReviewPercent }
	default:
		return func(r *schema.MRComparisonRow) float64 { return r.MergePercent }
	}
}

func phaseDaysFunc(phase schema.Phase) func(*schema.MRComparisonRow) float64 {
	switch phase {
	case schema.PhaseDev:
		return func(r *schema.MRComparisonRow) float64 { return r.DevDays }
	case schema.PhaseWait:
		return func(r *schema.MRComparisonRow) float64 { return r.WaitDays }
	case schema.PhaseReview:
		return func(r *schema.MRComparisonRow) float64 { return r.ReviewDays }
	default:
		return func(r *schema.MRComparisonRow) float64 { return r.MergeDays }
	}
}

func mostRestrictive(excluded map[string]int) string {
	best := ""
	bestCount := 0
	for key, count := range excluded {
		if count > bestCount || (count == bestCount && best != "" && key < best) {
			best = key
			bestCount = count
		}
	}
	return best
}
