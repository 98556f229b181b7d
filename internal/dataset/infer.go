package dataset

import (
	"strings"
	"time"
)

// naTokens are the spellings read as missing when loading text sources.
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

// IsNAToken reports whether a raw text cell stands for a missing value.
func IsNAToken(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

// ColumnFromStrings builds a column from raw text cells, deciding its Kind:
// numeric when every present cell parses as a number (including the case where
// no cell is present), unknown/bool when every present cell is true or false,
// text otherwise.
func ColumnFromStrings(name any, raw []string, f NumberFormat) *Column {
	present := 0
	numeric, boolean := true, true
	for _, s := range raw {
		if IsNAToken(s) {
			continue
		}
		present++
		if numeric {
			if _, ok := TryParseNumber(s, f); !ok {
				numeric = false
			}
		}
		if boolean {
			if _, ok := parseBool(s); !ok {
				boolean = false
			}
		}
		if !numeric && !boolean {
			break
		}
	}

	cells := make([]any, len(raw))
	switch {
	case numeric:
		for i, s := range raw {
			if IsNAToken(s) {
				continue
			}
			x, _ := TryParseNumber(s, f)
			cells[i] = x
		}
		return &Column{Name: name, Kind: Numeric, Cells: cells}
	case boolean && present > 0:
		for i, s := range raw {
			if b, ok := parseBool(s); ok {
				cells[i] = b
			}
		}
		return &Column{Name: name, Kind: Unknown, Cells: cells}
	default:
		for i, s := range raw {
			if IsNAToken(s) {
				continue
			}
			cells[i] = s
		}
		return &Column{Name: name, Kind: Text, Cells: cells}
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// KindOfValues infers a Kind from already typed cells, as returned by database
// drivers. Mixed or unrecognised types fall back to Text.
func KindOfValues(cells []any) Kind {
	var numeric, dates, bools, texts, other int
	for _, v := range cells {
		if IsMissing(v) {
			continue
		}
		switch v.(type) {
		case float64, float32, int64, int32, int, int16, int8, uint64, uint32, uint16, uint8:
			numeric++
		case time.Time:
			dates++
		case bool:
			bools++
		case string, []byte:
			texts++
		default:
			other++
		}
	}
	switch {
	case texts+other > 0:
		return Text
	case numeric > 0 && dates == 0 && bools == 0:
		return Numeric
	case dates > 0 && numeric == 0 && bools == 0:
		return DateTime
	case bools > 0 && numeric == 0 && dates == 0:
		return Unknown
	case numeric+dates+bools == 0:
		// Nothing present: behave like an all-missing float column.
		return Numeric
	}
	return Text
}
