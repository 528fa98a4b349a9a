package outwriter

import (
	"os"

	"github.com/huangsam/transit/internal/contract"
	"golang.org/x/term"
)

// GetMaxTablePathWidth calculates the maximum width for the input path shown
// above the peaks table, based on terminal width.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for the "Input: " label and the sample count
	available := termWidth - 30
	if available < 15 {
		return 15
	}
	if available > 100 {
		return 100
	}
	return available
}
