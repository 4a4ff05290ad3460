package schema

import (
	"fmt"
	"strings"
	"time"
)

// secondsPerDay converts between duration seconds and fractional days.
const secondsPerDay = 86400.0

// SecondsToDays converts a duration in seconds to fractional days.
func SecondsToDays(seconds float64) float64 {
	return seconds / secondsPerDay
}

// StripMarkdown normalizes a note body for phrase matching: markdown
// emphasis, backticks and brackets are removed, whitespace collapsed,
// and the result lowercased.
func StripMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"**", "",
		"__", "",
		"*", "",
		"_", " ",
		"`", "",
		"[", "",
		"]", "",
		"#", "",
	)
	s = replacer.Replace(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// FormatDuration renders a duration compactly for table output,
// e.g. "3d 4h", "2h 05m", "45s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		days := int(d.Hours()) / 24
		hours := int(d.Hours()) % 24
		return fmt.Sprintf("%dd %dh", days, hours)
	case d >= time.Hour:
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), mins)
	case d >= time.Minute:
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), secs)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// AbbreviateName shortens a display name to "First L" form for narrow
// table columns. Bot accounts (containing "bot]") and single-part names
// pass through unchanged.
func AbbreviateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(strings.ToLower(trimmed), "bot]") {
		return trimmed
	}
	parts := strings.Fields(trimmed)
	if len(parts) < 2 {
		return trimmed
	}
	last := parts[len(parts)-1]
	initial := string([]rune(last)[0])
	return parts[0] + " " + initial
}
