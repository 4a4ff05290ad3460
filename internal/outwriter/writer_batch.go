package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mrpulse/mrpulse/schema"
)

// writeJSONResultForBatch marshals the schema.BatchComparisonResult to JSON and writes it.
func writeJSONResultForBatch(w io.Writer, result *schema.BatchComparisonResult) error {
	return writeJSON(w, result)
}

// writeCSVResultForBatch writes the batch rows as CSV. Failed rows carry
// only iid and error so downstream tooling can count them.
func writeCSVResultForBatch(w io.Writer, result *schema.BatchComparisonResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"iid",
		"title",
		"author",
		"status",
		"created_at",
		"merged_at",
		"commits",
		"ai_reviews",
		"human_comments",
		"reviewers",
		"cycle_days",
		"dev_days",
		"wait_days",
		"review_days",
		"merge_days",
		"dev_percent",
		"wait_percent",
		"review_percent",
		"merge_percent",
		"has_ai_review",
		"mr_type",
		"dora_tier",
		"error",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i := range result.Rows {
			r := &result.Rows[i]
			if r.Error != "" {
				row := make([]string, len(header))
				row[0] = strconv.Itoa(r.IID)
				row[len(row)-1] = r.Error
				if err := csvWriter.Write(row); err != nil {
					return err
				}
				continue
			}
			mergedAt := ""
			if r.MergedAt != nil {
				mergedAt = r.MergedAt.Format(time.RFC3339)
			}
			row := []string{
				strconv.Itoa(r.IID),
				r.Title,
				r.Author,
				r.Status,
				r.CreatedAt.Format(time.RFC3339),
				mergedAt,
				fmt.Sprintf(intFmt, r.Commits),
				fmt.Sprintf(intFmt, r.AIReviews),
				fmt.Sprintf(intFmt, r.HumanComments),
				fmt.Sprintf(intFmt, r.Reviewers),
				fmtFloat(r.CycleDays),
				fmtFloat(r.DevDays),
				fmtFloat(r.WaitDays),
				fmtFloat(r.ReviewDays),
				fmtFloat(r.MergeDays),
				fmtFloat(r.DevPercent),
				fmtFloat(r.WaitPercent),
				fmtFloat(r.ReviewPercent),
				fmtFloat(r.MergePercent),
				strconv.FormatBool(r.HasAIReview),
				string(r.MRType),
				string(r.DORATier),
				"",
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
