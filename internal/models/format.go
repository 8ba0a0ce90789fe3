package models

import (
	"fmt"
	"math"
)

// NA is the display sentinel for a metric that could not be determined.
const NA = "N/A"

// FormatUSD renders a dollar amount with a magnitude suffix, e.g. "$1.25B".
func FormatUSD(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// FormatCount renders a unitless quantity with a magnitude suffix, e.g. "1.2M".
func FormatCount(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatPercent renders a percentage with two decimals, e.g. "12.34%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatBool renders a boolean flag for display.
func FormatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// FormatDays renders a day count, e.g. "180 days".
func FormatDays(v float64) string {
	d := int(math.Round(v))
	if d == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", d)
}
