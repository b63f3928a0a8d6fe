package outwriter

import (
	"os"

	"github.com/codiehq/codesight/internal/contract"
	"golang.org/x/term"
)

// GetMaxTablePathWidth returns how many characters the path column may
// use, derived from the terminal width and the visible table columns.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// An explicit --width override wins over detection
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Narrow default covers CI logs and pipes without a tty
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Space taken by the fixed columns
	baseWidth := 45 // Rank + Lang + Risk + Label + Quality + Patterns + Outlier with borders/padding

	if cfg.Detail {
		baseWidth += 20 // Slots + Size columns with formatting
	}

	// Borders, separators and padding
	baseWidth += 20

	// Clamp what is left so paths stay readable without swallowing the table
	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
