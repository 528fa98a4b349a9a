package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/transit/schema"
	"golang.org/x/term"
)

// Color variables for console output.
var (
	StrongColor   = color.New(color.FgGreen, color.Bold) // StrongColor marks a credible detection.
	ModerateColor = color.New(color.FgYellow)            // ModerateColor marks a candidate worth a look.
	WeakColor     = color.New(color.FgCyan)              // WeakColor marks a marginal peak.
	NoiseColor    = color.New(color.FgHiBlack)           // NoiseColor marks a peak indistinguishable from noise.
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(sde float64) string {
	text := schema.GetPlainLabel(sde)

	switch text {
	case schema.StrongSignal:
		return StrongColor.Sprint(text)
	case schema.ModerateSignal:
		return ModerateColor.Sprint(text)
	case schema.WeakSignal:
		return WeakColor.Sprint(text)
	default:
		return NoiseColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	if err := EnsureParentDir(filePath); err != nil {
		return nil, err
	}
	return os.Create(filePath)
}

// EnsureParentDir creates the directory that will hold filePath.
func EnsureParentDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the result cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".transit_cache.db"
	}
	return filepath.Join(homeDir, ".transit_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".transit_runs.db"
	}
	return filepath.Join(homeDir, ".transit_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
