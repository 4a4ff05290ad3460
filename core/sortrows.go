package core

import (
	"sort"

	"github.com/mrpulse/mrpulse/schema"
)

// sortRows orders rows by the requested field, stable otherwise.
// Failed rows always sink to the end regardless of direction.
func sortRows(rows []schema.MRComparisonRow, spec *schema.SortSpec) {
	if spec == nil {
		return
	}
	key := sortKeyFunc(spec.Field)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if (a.Error != "") != (b.Error != "") {
			return a.Error == ""
		}
		ka, kb := key(a), key(b)
		if spec.Descending {
			return ka > kb
		}
		return ka < kb
	})
}

func sortKeyFunc(field schema.SortField) func(*schema.MRComparisonRow) float64 {
	switch field {
	case schema.SortByIID:
		return func(r *schema.MRComparisonRow) float64 { return float64(r.IID) }
	case schema.SortByCreatedAt:
		return func(r *schema.MRComparisonRow) float64 { return float64(r.CreatedAt.UnixNano()) }
	case schema.SortByDevDays:
		return func(r *schema.MRComparisonRow) float64 { return r.DevDays }
	case schema.SortByWaitDays:
		return func(r *schema.MRComparisonRow) float64 { return r.WaitDays }
	case schema.SortByReviewDays:
		return func(r *schema.MRComparisonRow) float64 { return r.ReviewDays }
	case schema.SortByMergeDays:
		return func(r *schema.MRComparisonRow) float64 { return r.MergeDays }
	case schema.SortByCommits:
		return func(r *schema.MRComparisonRow) float64 { return float64(r.Commits) }
	case schema.SortByAIReviews:
		return func(r *schema.MRComparisonRow) float64 { return float64(r.AIReviews) }
	case schema.SortByHumanComments:
		return func(r *schema.MRComparisonRow) float64 { return float64(r.HumanComments) }
	default: // SortByCycleDays
		return func(r *schema.MRComparisonRow) float64 { return r.CycleDays }
	}
}
