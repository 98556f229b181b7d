package analysis

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// ReadableNumber groups thousands and prints three decimals, or none when x
// is integral.
func ReadableNumber(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return printer.Sprint(x)
	}
	if x == math.Trunc(x) {
		return printer.Sprintf("%.0f", x)
	}
	return printer.Sprintf("%.3f", x)
}

// ReadableInt groups thousands of n.
func ReadableInt(n int) string { return printer.Sprintf("%d", n) }

// sharePct renders a share of rows with four decimals, e.g. "12.5000 %".
func sharePct(x float64) string { return printer.Sprintf("%.4f %%", x*100) }

// shortPct renders a share of rows with one decimal, e.g. "12.5%".
func shortPct(x float64) string { return printer.Sprintf("%.1f%%", x*100) }

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
