package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mrpulse/mrpulse/schema"
)

// DORA tier label constants.
const (
	EliteValue  = "Elite"
	HighValue   = "High"
	MediumValue = "Medium"
	LowValue    = "Low"
)

// Color variables for console output.
var (
	eliteColor  = color.New(color.FgGreen, color.Bold)  // fastest cycle, healthy signal
	highColor   = color.New(color.FgCyan)               // healthy signal
	mediumColor = color.New(color.FgYellow)             // standard caution
	lowColor    = color.New(color.FgRed, color.Bold)    // slowest cycle, danger
	aiColor     = color.New(color.FgMagenta, color.Bold)
)

// GetPlainTierLabel returns a plain text label for a DORA tier. This is
// the core logic used for CSV, JSON, and table printing.
func GetPlainTierLabel(tier schema.DORATier) string {
	switch tier {
	case schema.EliteTier:
		return EliteValue
	case schema.HighTier:
		return HighValue
	case schema.MediumTier:
		return MediumValue
	default:
		return LowValue
	}
}

// GetColorTierLabel returns a colored tier label for console output.
func GetColorTierLabel(tier schema.DORATier) string {
	text := GetPlainTierLabel(tier)
	switch text {
	case EliteValue:
		return eliteColor.Sprint(text)
	case HighValue:
		return highColor.Sprint(text)
	case MediumValue:
		return mediumColor.Sprint(text)
	default: // "Low"
		return lowColor.Sprint(text)
	}
}

// GetAIMarker returns the AI-review marker for table output, colored
// when enabled.
func GetAIMarker(hasAI, useColors bool) string {
	if !hasAI {
		return "-"
	}
	if useColors {
		return aiColor.Sprint("AI")
	}
	return "AI"
}

// SelectOutputFile returns the appropriate file handle for output, based
// on the provided file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateTitle shortens a title to maxLen runes for narrow table columns.
func TruncateTitle(title string, maxLen int) string {
	if maxLen <= 3 {
		maxLen = 3
	}
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen-3]) + "..."
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}
