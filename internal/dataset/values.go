package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// NumberFormat controls how numeric strings are read. Zero separators mean
// auto-detect per value.
type NumberFormat struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

// TryParseDate reads v as a point in time. Strings go through a list of common
// layouts first and then a permissive parser; anything else that is not a
// time.Time is rejected.
func TryParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return parseDateString(x)
	}
	return time.Time{}, false
}

func parseDateString(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	// dateparse can panic on some malformed inputs; a panic means "not a date".
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TryEpochSeconds converts a date cell to seconds since the Unix epoch.
// Missing, empty and unparseable values report false.
func TryEpochSeconds(v any) (float64, bool) {
	if IsMissing(v) {
		return 0, false
	}
	t, ok := TryParseDate(v)
	if !ok {
		return 0, false
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9, true
}

// TryNumber reads a numeric cell. Strings are parsed with auto-detected
// separators.
func TryNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if IsMissing(x) {
			return 0, false
		}
		return x, true
	case float32:
		if IsMissing(x) {
			return 0, false
		}
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint8:
		return float64(x), true
	case string:
		return TryParseNumber(x, NumberFormat{})
	}
	return 0, false
}

// TryParseNumber parses s honouring the decimal and thousands separators in f.
// A trailing or embedded percent sign is ignored; infinities are rejected.
func TryParseNumber(s string, f NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := f.DecimalSeparator
	thou := f.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			// "1,500" reads as a thousands group, "1,5" as a decimal comma.
			if tail := raw[cpos+1:]; len(tail) == 3 && cpos > 0 && isDigits(tail) {
				dec, thou = '.', ','
			} else {
				dec = ','
			}
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(x, 0) || math.IsNaN(x) {
		return 0, false
	}
	return x, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
