// Package ui renders search progress and results on the terminal.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/plchunter/plchunter/pkg/search"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// PrintSearchInfo displays the search configuration before workers start.
func PrintSearchInfo(pattern string, curve string, workers int, difficulty uint64) {
	fmt.Printf("\n  %s🔎 SEARCHING%s %sdid:plc:%s%s%s%s", ColorGreen+ColorBold, ColorReset, ColorDim, ColorReset, ColorCyan+ColorBold, pattern, ColorReset)
	fmt.Printf("  %s%s · %d workers (1/%s)%s\n\n", ColorDim, curve, workers, FormatNumber(difficulty), ColorReset)
}

// PrintProgress shows the animated progress line.
func PrintProgress(stats search.Stats, difficulty uint64, frame int) {
	spinners := []string{"◐", "◓", "◑", "◒"}
	spinner := spinners[frame%len(spinners)]

	diff := float64(difficulty)
	if diff == 0 {
		diff = 1
	}
	ratio := float64(stats.Attempts) / diff
	progress := 1.0 - math.Pow(0.5, 2.0*ratio)

	barWidth := 40
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("▓", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Printf("\r  %s%s%s %s%s%s %s%s%s │ %s%s%s │ %s",
		ColorCyan, spinner, ColorReset,
		ColorDim, bar, ColorReset,
		ColorGreen+ColorBold, FormatHashRate(stats.HashRate), ColorReset,
		ColorYellow, FormatNumber(stats.Attempts), ColorReset,
		FormatDuration(time.Duration(stats.ElapsedSecs*float64(time.Second))))
}

// PrintSuccess shows the found identifier and the keys registered on it.
func PrintSuccess(res *search.Result) {
	fmt.Printf("\n\n  %s%s✨ IDENTIFIER FOUND%s\n\n", ColorGreen, ColorBold, ColorReset)
	fmt.Printf("     %s%s%s%s\n\n", ColorGreen, ColorBold, res.DID, ColorReset)

	fmt.Printf("  %sROTATION KEYS%s\n", ColorCyan+ColorBold, ColorReset)
	for i, key := range res.Op.RotationKeys {
		fmt.Printf("     %d. %s\n", i+1, key)
	}
	fmt.Println()

	fmt.Printf("  %s⏱  %s%s   %s│%s   📊 %s attempts%s\n\n",
		ColorCyan, ColorReset+ColorBold, FormatDuration(res.Elapsed),
		ColorDim, ColorReset+ColorBold, FormatNumber(res.Attempts), ColorReset)

	fmt.Printf("  %s%s⚠  Rotation key #2 has the private scalar 1. Remove it as soon as the DID is registered.%s\n\n", ColorRed, ColorBold, ColorReset)
}

// PrintCancelled shows the terminal line for a run stopped before a match.
func PrintCancelled(stats search.Stats) {
	fmt.Printf("\n\n  %s⚠ Cancelled%s │ %s attempts │ %s\n",
		ColorYellow+ColorBold, ColorReset,
		FormatNumber(stats.Attempts),
		FormatDuration(time.Duration(stats.ElapsedSecs*float64(time.Second))))
}

// ClearLine clears the current line.
func ClearLine() {
	fmt.Print("\r                                                                                              \r")
}

// FormatHashRate formats attempts per second.
func FormatHashRate(rate float64) string {
	if rate >= 1000000 {
		return fmt.Sprintf("%.1fM/s", rate/1000000)
	}
	if rate >= 1000 {
		return fmt.Sprintf("%.1fK/s", rate/1000)
	}
	return fmt.Sprintf("%.0f/s", rate)
}

// FormatNumber adds commas to large numbers.
func FormatNumber(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+(len(s)-1)/3)
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
