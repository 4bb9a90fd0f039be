package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Authenticity label constants.
const (
	AuthenticValue = "Authentic" // Authentic value
	PassingValue   = "Passing"   // Passing value
	WeakValue      = "Weak"      // Weak value
	OffVoiceValue  = "Off-voice" // Off-voice value
)

// Color variables for console output.
var (
	AuthenticColor = color.New(color.FgGreen, color.Bold) // AuthenticColor marks scores well inside the voice.
	PassingColor   = color.New(color.FgCyan)              // PassingColor marks scores over the passing mark.
	WeakColor      = color.New(color.FgYellow)            // WeakColor marks scores that need another pass.
	OffVoiceColor  = color.New(color.FgRed, color.Bold)   // OffVoiceColor marks scores that miss the voice.
)

// GetPlainLabel returns a plain text label for an authenticity score.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(score int) string {
	switch {
	case score >= 85:
		return AuthenticValue
	case score >= 75:
		return PassingValue
	case score >= 50:
		return WeakValue
	default:
		return OffVoiceValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(score int) string {
	text := GetPlainLabel(score)

	switch text {
	case AuthenticValue:
		return AuthenticColor.Sprint(text)
	case PassingValue:
		return PassingColor.Sprint(text)
	case WeakValue:
		return WeakColor.Sprint(text)
	default:
		return OffVoiceColor.Sprint(text)
	}
}

// SelectOutputFile returns the file handle for output, or os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
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

// GetCacheDBFilePath returns the path to the SQLite DB file for transcripts and personas.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".voicepersona_cache.db"
	}
	return filepath.Join(homeDir, ".voicepersona_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".voicepersona_analysis.db"
	}
	return filepath.Join(homeDir, ".voicepersona_analysis.db")
}

// TruncateText shortens text to maxWidth runes with an ellipsis suffix.
// Widths of 3 or less leave the text alone.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
