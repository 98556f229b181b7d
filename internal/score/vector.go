package score

import (
	"sort"

	"github.com/KaramelBytes/lookatdata-cli/internal/classify"
	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

// Vector holds one score per row for a single column. Valid[i] is false
// where the row's value was missing, in which case Scores[i] is 0 and the
// row receives nothing from this column.
type Vector struct {
	Column   int
	Label    string
	Category classify.Tag
	Scores   []float64
	Valid    []bool
}

// NumericScores scores a continuous column by how far each value's
// percentile rank sits from the median.
func NumericScores(c *dataset.Column) Vector {
	vals := make([]float64, c.Len())
	valid := make([]bool, c.Len())
	for i, v := range c.Cells {
		vals[i], valid[i] = dataset.TryNumber(v)
	}
	return Vector{Label: c.Label(), Category: classify.TagNumeric, Scores: ContinuousScores(vals, valid), Valid: valid}
}

// DateScores scores a date column like a continuous one, on seconds since
// the epoch. Values that cannot be read as dates count as missing.
func DateScores(c *dataset.Column) Vector {
	vals := make([]float64, c.Len())
	valid := make([]bool, c.Len())
	for i, v := range c.Cells {
		vals[i], valid[i] = dataset.TryEpochSeconds(v)
	}
	return Vector{Label: c.Label(), Category: classify.TagDate, Scores: ContinuousScores(vals, valid), Valid: valid}
}

// ContinuousScores maps each valid value to 2*|0.5 - p| where p is its
// percentile rank among the valid values. Ties share their average rank;
// the minimum ranks 0 and the maximum ranks 1, so both tails score 1 and the
// median scores 0.
func ContinuousScores(vals []float64, valid []bool) []float64 {
	out := make([]float64, len(vals))
	pct := PercentileRanks(vals, valid)
	for i, p := range pct {
		if !valid[i] {
			continue
		}
		d := 0.5 - p
		if d < 0 {
			d = -d
		}
		out[i] = 2 * d
	}
	return out
}

// PercentileRanks returns (rank-1)/(n-1) for every valid value, with average
// ranks for ties. A lone value ranks 0.5. Invalid entries are left at 0.
func PercentileRanks(vals []float64, valid []bool) []float64 {
	out := make([]float64, len(vals))
	idx := make([]int, 0, len(vals))
	for i := range vals {
		if valid[i] {
			idx = append(idx, i)
		}
	}
	n := len(idx)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[idx[0]] = 0.5
		return out
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })
	for lo := 0; lo < n; {
		hi := lo
		for hi+1 < n && vals[idx[hi+1]] == vals[idx[lo]] {
			hi++
		}
		// 1-based ranks lo+1..hi+1 averaged, then shifted to start at 0.
		avg := float64(lo+hi) / 2
		p := avg / float64(n-1)
		for k := lo; k <= hi; k++ {
			out[idx[k]] = p
		}
		lo = hi + 1
	}
	return out
}

// CategoricalScores scores a categorical column by rarity: the most frequent
// value scores 0 and the rarest scores 1. It reports false when the column
// has no present value.
func CategoricalScores(c *dataset.Column) (Vector, bool) {
	counts := map[any]int{}
	var order []any
	for _, v := range c.Cells {
		if dataset.IsMissing(v) {
			continue
		}
		k := dataset.CellKey(v)
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return Vector{}, false
	}

	freq := make([]int, 0, len(order))
	for _, k := range order {
		freq = append(freq, counts[k])
	}
	byCount := FrequencyScores(freq)

	v := Vector{
		Label:    c.Label(),
		Category: classify.TagCategorical,
		Scores:   make([]float64, c.Len()),
		Valid:    make([]bool, c.Len()),
	}
	for i, cell := range c.Cells {
		if dataset.IsMissing(cell) {
			continue
		}
		v.Scores[i] = byCount[counts[dataset.CellKey(cell)]]
		v.Valid[i] = true
	}
	return v, true
}

// FrequencyScores maps each distinct count to a rarity score. With the
// distinct counts sorted descending as c_1..c_k, r_i = c_1/c_i, and the
// score is (r_i - 1) / (r_k - 1); a zero denominator makes every score 0.
// Ratios of counts equal ratios of the corresponding frequencies.
func FrequencyScores(counts []int) map[int]float64 {
	distinct := make([]int, 0, len(counts))
	seen := map[int]struct{}{}
	sorted := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, c := range sorted {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		distinct = append(distinct, c)
	}
	out := make(map[int]float64, len(distinct))
	if len(distinct) == 0 {
		return out
	}
	adj := make([]float64, len(distinct))
	for i, c := range distinct {
		if c != 0 {
			adj[i] = float64(distinct[0])/float64(c) - 1
		} else {
			adj[i] = -1
		}
	}
	last := adj[len(adj)-1]
	for i, c := range distinct {
		if last != 0 {
			out[c] = adj[i] / last
		} else {
			out[c] = 0
		}
	}
	return out
}
