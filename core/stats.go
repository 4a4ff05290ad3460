package core

import (
	"math"
	"sort"

	"github.com/mrpulse/mrpulse/schema"
)

// rowField extracts one numeric field from a comparison row.
type rowField struct {
	key     string
	extract func(*schema.MRComparisonRow) float64
}

// summaryFields lists the numeric fields covered by percentile
// statistics, in stable contract order.
var summaryFields = []rowField{
	{schema.FieldCycleDays, func(r *schema.MRComparisonRow) float64 { return r.CycleDays }},
	{schema.FieldDevDays, func(r *schema.MRComparisonRow) float64 { return r.DevDays }},
	{schema.FieldWaitDays, func(r *schema.MRComparisonRow) float64 { return r.WaitDays }},
	{schema.FieldReviewDays, func(r *schema.MRComparisonRow) float64 { return r.ReviewDays }},
	{schema.FieldMergeDays, func(r *schema.MRComparisonRow) float64 { return r.MergeDays }},
	{schema.FieldCommits, func(r *schema.MRComparisonRow) float64 { return float64(r.Commits) }},
	{schema.FieldAIReviews, func(r *schema.MRComparisonRow) float64 { return float64(r.AIReviews) }},
	{schema.FieldHumanComments, func(r *schema.MRComparisonRow) float64 { return float64(r.HumanComments) }},
	{schema.FieldReviewers, func(r *schema.MRComparisonRow) float64 { return float64(r.Reviewers) }},
}

// ComputeBatchSummary recomputes the aggregate statistics over the given
// rows. Failed rows count toward FailedCount and nothing else. The
// computation is idempotent: the same rows always produce the same
// summary. Callers that filter rows post-hoc must invoke this again;
// the summary is never kept in sync with row mutation automatically.
func ComputeBatchSummary(rows []schema.MRComparisonRow) schema.BatchSummary {
	summary := schema.BatchSummary{
		TotalMRs: len(rows),
		Fields:   make(map[string]schema.FieldStats, len(summaryFields)),
	}

	ok := make([]*schema.MRComparisonRow, 0, len(rows))
	for i := range rows {
		if rows[i].Error != "" {
			summary.FailedCount++
			continue
		}
		summary.SucceededCount++
		if rows[i].HasAIReview {
			summary.WithAIReview++
		}
		ok = append(ok, &rows[i])
	}

	for _, field := range summaryFields {
		values := make([]float64, len(ok))
		for i, row := range ok {
			values[i] = field.extract(row)
		}
		summary.Fields[field.key] = computeFieldStats(values)
	}

	summary.TypeStats = computeTypeStats(ok)
	summary.TierCounts = computeTierCounts(ok)
	return summary
}

// computeFieldStats computes nearest-rank percentiles plus the mean over
// one sample. Zero-stat output for an empty sample keeps downstream
// renderers free of "no data" special cases.
func computeFieldStats(values []float64) schema.FieldStats {
	stats := schema.FieldStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	total := 0.0
	for _, v := range sorted {
		total += v
	}
	stats.Mean = total / float64(len(sorted))
	stats.P50 = nearestRank(sorted, 50)
	stats.P75 = nearestRank(sorted, 75)
	stats.P90 = nearestRank(sorted, 90)
	stats.P95 = nearestRank(sorted, 95)
	return stats
}

// nearestRank selects the p-th percentile via nearest-rank on a sorted
// sample: rank = ceil(p/100 * n), no linear interpolation.
func nearestRank(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}

// computeTypeStats produces grouped statistics per MR type, including
// the AI-review cross tabulation, in canonical type order.
func computeTypeStats(rows []*schema.MRComparisonRow) []schema.TypeGroupStats {
	order := []schema.MRType{schema.StandardMR, schema.DraftMR, schema.ActiveDevMR}
	groups := make(map[schema.MRType]*schema.TypeGroupStats, len(order))
	totals := make(map[schema.MRType]float64, len(order))

	for _, row := range rows {
		mrType := row.MRType
		if mrType == "" {
			mrType = schema.StandardMR
		}
		g := groups[mrType]
		if g == nil {
			g = &schema.TypeGroupStats{Type: mrType}
			groups[mrType] = g
		}
		g.Count++
		if row.HasAIReview {
			g.WithAIReview++
		}
		totals[mrType] += row.CycleDays
	}

	var stats []schema.TypeGroupStats
	for _, t := range order {
		g := groups[t]
		if g == nil {
			continue
		}
		g.MeanCycleDays = totals[t] / float64(g.Count)
		stats = append(stats, *g)
	}
	return stats
}

func computeTierCounts(rows []*schema.MRComparisonRow) map[schema.DORATier]int {
	if len(rows) == 0 {
		return nil
	}
	counts := make(map[schema.DORATier]int)
	for _, row := range rows {
		if row.DORATier != "" {
			counts[row.DORATier]++
		}
	}
	return counts
}
