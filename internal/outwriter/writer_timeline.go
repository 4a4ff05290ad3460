package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/mrpulse/mrpulse/schema"
)

// writeJSONResultForTimeline marshals the schema.MRTimeline to JSON and writes it.
func writeJSONResultForTimeline(w io.Writer, result *schema.MRTimeline) error {
	return writeJSON(w, result)
}

// writeCSVResultForTimeline writes the timeline event list as CSV. One
// row per event; phase and summary data belong to the JSON format.
func writeCSVResultForTimeline(w io.Writer, result *schema.MRTimeline, fmtFloat func(float64) string) error {
	header := []string{
		"sequence",
		"timestamp",
		"actor_username",
		"actor_role",
		"is_ai_bot",
		"event_type",
		"sha",
		"interval_to_next_seconds",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, ev := range result.Events {
			interval := ""
			if ev.IntervalToNext != nil {
				interval = fmtFloat(*ev.IntervalToNext)
			}
			sha := ""
			if ev.Details != nil {
				sha = ev.Details.SHA
			}
			row := []string{
				strconv.Itoa(ev.Sequence),
				ev.Timestamp.Format(time.RFC3339),
				ev.Actor.Username,
				string(ev.Actor.Role),
				strconv.FormatBool(ev.Actor.IsAIBot),
				string(ev.Type),
				sha,
				interval,
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
