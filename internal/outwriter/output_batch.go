package outwriter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/internal/parquet"
	"github.com/mrpulse/mrpulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintBatchResult writes a batch comparison result to the configured
// destination. Parquet always needs an explicit output file; the other
// formats default to stdout.
func PrintBatchResult(result *schema.BatchComparisonResult, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteBatchRowsParquet(parquet.ConvertComparisonRows(result), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Saved batch rows to %s\n", cfg.OutputFile)
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteBatchResult(w, result, cfg, duration)
	}, "Saved batch analysis")
}

// WriteBatchResult outputs the batch result, dispatching based on the output format configured.
func WriteBatchResult(w io.Writer, result *schema.BatchComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSONResultForBatch(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultForBatch(w, result, fmtFloat, intFmt); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeBatchTable(w, result, cfg, fmtFloat, duration)
	}
	return nil
}

// writeBatchTable writes the batch rows and the aggregate summary.
func writeBatchTable(w io.Writer, result *schema.BatchComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{
		"IID",
		"Title",
		"Author",
		"Type",
		"AI",
		"Cycle",
		"Dev %",
		"Wait %",
		"Review %",
		"Merge %",
		"Tier",
	})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	titleWidth := GetMaxTableTitleWidth(cfg)
	tierLabel := contract.GetPlainTierLabel
	if cfg.UseColors {
		tierLabel = contract.GetColorTierLabel
	}

	var data [][]string
	for i := range result.Rows {
		r := &result.Rows[i]
		if r.Error != "" {
			data = append(data, []string{
				strconv.Itoa(r.IID), "(failed)", "", "", "", "", "", "", "", "", "",
			})
			continue
		}
		data = append(data, []string{
			strconv.Itoa(r.IID),
			contract.TruncateTitle(r.Title, titleWidth),
			schema.AbbreviateName(r.Author),
			string(r.MRType),
			contract.GetAIMarker(r.HasAIReview, cfg.UseColors),
			fmtFloat(r.CycleDays) + "d",
			fmtFloat(r.DevPercent),
			fmtFloat(r.WaitPercent),
			fmtFloat(r.ReviewPercent),
			fmtFloat(r.MergePercent),
			tierLabel(r.DORATier),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Failed rows carry their error below the table so the cause is visible.
	for i := range result.Rows {
		r := &result.Rows[i]
		if r.Error != "" {
			if _, err := fmt.Fprintf(w, "MR !%d failed: %s\n", r.IID, r.Error); err != nil {
				return err
			}
		}
	}

	if err := writeBatchSummaryText(w, result, cfg, fmtFloat); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers\n", duration, result.Metadata.Workers); err != nil {
		return err
	}
	return nil
}

// writeBatchSummaryText prints the aggregate summary footer below the table.
func writeBatchSummaryText(w io.Writer, result *schema.BatchComparisonResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	s := result.Summary
	if _, err := fmt.Fprintf(w, "Analyzed %d MRs: %d succeeded, %d failed, %d with AI review\n",
		s.TotalMRs, s.SucceededCount, s.FailedCount, s.WithAIReview); err != nil {
		return err
	}

	if cycle, ok := s.Fields[schema.FieldCycleDays]; ok && cycle.Count > 0 {
		if _, err := fmt.Fprintf(w, "Cycle days: mean %s, p50 %s, p75 %s, p90 %s, p95 %s\n",
			fmtFloat(cycle.Mean), fmtFloat(cycle.P50), fmtFloat(cycle.P75), fmtFloat(cycle.P90), fmtFloat(cycle.P95)); err != nil {
			return err
		}
	}

	for _, ts := range s.TypeStats {
		if ts.Count == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "Type %s: %d MRs, %d with AI review, mean cycle %s days\n",
			ts.Type, ts.Count, ts.WithAIReview, fmtFloat(ts.MeanCycleDays)); err != nil {
			return err
		}
	}

	if len(s.TierCounts) > 0 {
		if _, err := fmt.Fprintf(w, "DORA tiers: Elite %d, High %d, Medium %d, Low %d\n",
			s.TierCounts[schema.EliteTier], s.TierCounts[schema.HighTier],
			s.TierCounts[schema.MediumTier], s.TierCounts[schema.LowTier]); err != nil {
			return err
		}
	}

	if fs := result.PhaseFilterStats; fs != nil {
		if _, err := fmt.Fprintf(w, "Filters kept %d MRs\n", fs.FilteredCount); err != nil {
			return err
		}
		keys := make([]string, 0, len(fs.ExcludedByFilter))
		for key := range fs.ExcludedByFilter {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := fmt.Fprintf(w, "  excluded by %s: %d\n", key, fs.ExcludedByFilter[key]); err != nil {
				return err
			}
		}
		if fs.FilteredCount == 0 && fs.MostRestrictive != "" {
			if _, err := fmt.Fprintf(w, "No MRs matched; most restrictive condition: %s\n", fs.MostRestrictive); err != nil {
				return err
			}
		}
	}
	return nil
}
