package classify

import "slices"

// Dates returns the date columns: declared date/time columns first, then
// columns whose every cell parses as a date.
func (a *Assignment) Dates() []int { return cloneCols(a.dates) }

// Categoricals returns yn-suffixed and text columns that are not dates.
func (a *Assignment) Categoricals() []int { return cloneCols(a.categoricals) }

// Numerics returns numeric columns that are not identifiers, categoricals or
// entirely null.
func (a *Assignment) Numerics() []int { return cloneCols(a.numerics) }

// AllNulls returns columns without a single present value.
func (a *Assignment) AllNulls() []int { return cloneCols(a.allNulls) }

// AnyNulls returns columns with at least one missing value.
func (a *Assignment) AnyNulls() []int { return cloneCols(a.anyNulls) }

// Uniques returns columns whose present values are all distinct.
func (a *Assignment) Uniques() []int { return cloneCols(a.uniques) }

// IDs returns columns whose name ends in "id".
func (a *Assignment) IDs() []int { return cloneCols(a.idSuffix) }

// YNs returns columns whose name ends in "yn".
func (a *Assignment) YNs() []int { return cloneCols(a.ynSuffix) }

// Index guesses the row-identifier columns: unique columns that are never
// null. Without any, the first column is the guess.
func (a *Assignment) Index() []int {
	idx := combine(a.uniques, a.anyNulls)
	if len(idx) == 0 && len(a.labels) > 0 {
		return []int{0}
	}
	return idx
}

// Signal returns the scored columns that carry information: dates,
// categoricals and numerics, minus the index guess, identifiers and
// all-null columns.
func (a *Assignment) Signal() []int {
	return combine(
		slices.Concat(a.numerics, a.categoricals, a.dates),
		slices.Concat(a.Index(), a.idSuffix, a.allNulls),
	)
}

// Tags lists every tag carried by column i.
func (a *Assignment) Tags(i int) []Tag {
	var out []Tag
	for _, t := range []struct {
		tag  Tag
		cols []int
	}{
		{TagDate, a.dates},
		{TagCategorical, a.categoricals},
		{TagNumeric, a.numerics},
		{TagAllNull, a.allNulls},
		{TagIDSuffixed, a.idSuffix},
		{TagYNSuffixed, a.ynSuffix},
	} {
		if slices.Contains(t.cols, i) {
			out = append(out, t.tag)
		}
	}
	return out
}

// Len returns the number of columns of the classified table.
func (a *Assignment) Len() int { return len(a.labels) }

// Label returns the display label of column i.
func (a *Assignment) Label(i int) string {
	if i < 0 || i >= len(a.labels) {
		return ""
	}
	return a.labels[i]
}

// Labels maps column positions to display labels.
func (a *Assignment) Labels(cols []int) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, a.Label(c))
	}
	return out
}

// Map returns every accessor keyed by name with column labels as values.
func (a *Assignment) Map() map[string][]string {
	return map[string][]string{
		"index":        a.Labels(a.Index()),
		"allnulls":     a.Labels(a.allNulls),
		"ids":          a.Labels(a.idSuffix),
		"dates":        a.Labels(a.dates),
		"categoricals": a.Labels(a.categoricals),
		"numerics":     a.Labels(a.numerics),
		"yns":          a.Labels(a.ynSuffix),
		"signal":       a.Labels(a.Signal()),
	}
}

func cloneCols(cols []int) []int {
	if cols == nil {
		return []int{}
	}
	return slices.Clone(cols)
}
