package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mrpulse/mrpulse/internal/contract"
	"github.com/mrpulse/mrpulse/internal/parquet"
	"github.com/mrpulse/mrpulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTimelineResult writes a single MR timeline to the configured
// destination. Parquet always needs an explicit output file; the other
// formats default to stdout.
func PrintTimelineResult(result *schema.MRTimeline, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteTimelineEventsParquet(parquet.ConvertTimelineEvents(result), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Saved timeline events to %s\n", cfg.OutputFile)
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteTimelineResult(w, result, cfg, duration)
	}, "Saved timeline analysis")
}

// WriteTimelineResult outputs the timeline, dispatching based on the output format configured.
func WriteTimelineResult(w io.Writer, result *schema.MRTimeline, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSONResultForTimeline(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVResultForTimeline(w, result, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeTimelineTables(w, result, cfg, fmtFloat, duration)
	}
	return nil
}

// writeTimelineTables renders the phase breakdown, the fine-grained
// segments, and optionally the full event list.
func writeTimelineTables(w io.Writer, result *schema.MRTimeline, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	// --- 1. MR header ---
	title := contract.TruncateTitle(result.MR.Title, GetMaxTableTitleWidth(cfg))
	if _, err := fmt.Fprintf(w, "MR !%d: %s\n", result.MR.IID, title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Author: %s, State: %s, Cycle time: %s\n",
		result.MR.Author, result.MR.State,
		schema.FormatDuration(time.Duration(result.CycleTimeSeconds)*time.Second)); err != nil {
		return err
	}

	// --- 2. Phase breakdown table ---
	if err := writePhaseTable(w, result, cfg, fmtFloat); err != nil {
		return err
	}

	// --- 3. Fine-grained segment table ---
	if err := writeSegmentTable(w, result, fmtFloat); err != nil {
		return err
	}

	// --- 4. Event list (opt-in, verbose) ---
	if cfg.ShowEvents {
		if err := writeEventTable(w, result, cfg); err != nil {
			return err
		}
	}

	// --- 5. Summary footer ---
	s := result.Summary
	if _, err := fmt.Fprintf(w, "Commits: %d, AI reviews: %d, Human comments: %d, Reviewers: %d, Contributors: %d\n",
		s.Commits, s.AIReviews, s.HumanComments, s.Reviewers, s.Contributors); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analysis completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

func writePhaseTable(w io.Writer, result *schema.MRTimeline, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Phase", "From", "To", "Duration", "Share"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, ps := range result.PhaseSegments {
		data = append(data, []string{
			phaseLabel(ps.Phase, cfg.UseEmojis),
			string(ps.FromEvent.Type),
			string(ps.ToEvent.Type),
			schema.FormatDuration(time.Duration(ps.DurationSeconds) * time.Second),
			fmtFloat(ps.Percentage) + "%",
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSegmentTable(w io.Writer, result *schema.MRTimeline, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"From", "To", "Duration", "Share"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, seg := range result.Segments {
		data = append(data, []string{
			string(seg.From),
			string(seg.To),
			schema.FormatDuration(time.Duration(seg.DurationSeconds) * time.Second),
			fmtFloat(seg.Percentage) + "%",
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeEventTable(w io.Writer, result *schema.MRTimeline, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Time", "Actor", "Event", "Detail"})

	var data [][]string
	for _, ev := range result.Events {
		detail := ""
		if ev.Details != nil {
			switch {
			case ev.Details.SHA != "":
				detail = ev.Details.SHA
			case ev.Details.Message != "":
				detail = contract.TruncateTitle(ev.Details.Message, 40)
			case ev.Details.PipelineID != 0:
				detail = "pipeline " + strconv.FormatInt(ev.Details.PipelineID, 10)
			}
		}
		data = append(data, []string{
			strconv.Itoa(ev.Sequence),
			ev.Timestamp.Format(time.RFC3339),
			schema.AbbreviateName(ev.Actor.Name),
			eventLabel(ev.Type, cfg.UseEmojis),
			detail,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// phaseLabel renders a phase name, optionally decorated with an emoji.
func phaseLabel(p schema.Phase, useEmojis bool) string {
	if !useEmojis {
		return string(p)
	}
	switch p {
	case schema.PhaseDev:
		return "🔨 " + string(p)
	case schema.PhaseWait:
		return "⏳ " + string(p)
	case schema.PhaseReview:
		return "🔍 " + string(p)
	default:
		return "🚀 " + string(p)
	}
}

// eventLabel renders an event type, optionally decorated with an emoji.
func eventLabel(t schema.EventType, useEmojis bool) string {
	if !useEmojis {
		return string(t)
	}
	switch t {
	case schema.EventAIReviewStarted:
		return "🤖 " + string(t)
	case schema.EventHumanReviewStarted:
		return "👀 " + string(t)
	case schema.EventApproved:
		return "✅ " + string(t)
	case schema.EventMerged:
		return "🎉 " + string(t)
	case schema.EventPipelineFailed:
		return "❌ " + string(t)
	default:
		return string(t)
	}
}
