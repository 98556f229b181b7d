// Package analysis builds the "describe" report of a table: a summary of its
// categorical variables, its continuous variables and its most unusual rows.
package analysis

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/KaramelBytes/lookatdata-cli/internal/classify"
	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
	"github.com/KaramelBytes/lookatdata-cli/internal/score"
)

// Options controls report contents.
type Options struct {
	// TopN is the number of unusual rows listed.
	TopN int
	// TopCategories is the number of most frequent values shown per
	// categorical column.
	TopCategories int
	// Workers bounds column scoring concurrency; 0 means NumCPU.
	Workers int
}

// DefaultOptions returns reasonable defaults for a report.
func DefaultOptions() Options {
	return Options{TopN: score.DefaultTopN, TopCategories: 5}
}

// Report is the analysis of one table.
type Report struct {
	RunID   string              `json:"run_id"`
	Name    string              `json:"name"`
	Rows    int                 `json:"rows"`
	Columns int                 `json:"columns"`
	Classes map[string][]string `json:"classes"`

	Categoricals     []CategoricalSummary `json:"categoricals"`
	NullCategoricals []string             `json:"null_categoricals"`
	Continuous       []ContinuousSummary  `json:"continuous"`
	// Unusual is nil for a table without rows.
	Unusual *UnusualRows `json:"unusual,omitempty"`
}

// CategoryShare is one value of a categorical column and its share of all rows.
type CategoryShare struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// CategoricalSummary describes the most frequent values of a column.
type CategoricalSummary struct {
	Name      string          `json:"name"`
	Top       []CategoryShare `json:"top"`
	TopShare  float64         `json:"top_share"`
	Nulls     int             `json:"nulls"`
	NullShare float64         `json:"null_share"`
}

// ContinuousSummary holds the descriptive statistics of a numeric column.
// Statistics other than Count and NullShare ignore missing values.
type ContinuousSummary struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Sum       float64 `json:"sum"`
	Mean      float64 `json:"mean"`
	NullShare float64 `json:"null_share"`
	Min       float64 `json:"min"`
	P10       float64 `json:"p10"`
	P50       float64 `json:"p50"`
	P90       float64 `json:"p90"`
	Max       float64 `json:"max"`
}

// UnusualRows lists the highest scoring rows with their original cells.
type UnusualRows struct {
	Columns []string     `json:"columns"`
	Rows    []UnusualRow `json:"rows"`
}

// UnusualRow is one ranked row.
type UnusualRow struct {
	Index int      `json:"index"`
	Score float64  `json:"score"`
	Cells []string `json:"cells"`
}

// Describe classifies t, summarises its categorical and continuous columns
// and ranks its rows by unusualness.
func Describe(ctx context.Context, t *dataset.Table, opt Options) (*Report, error) {
	a, err := classify.Classify(t)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: classify")
	}
	if opt.TopCategories <= 0 {
		opt.TopCategories = 5
	}

	rep := &Report{
		RunID:            uuid.NewString(),
		Name:             t.Name,
		Rows:             t.Rows(),
		Columns:          len(t.Columns),
		Classes:          a.Map(),
		Categoricals:     []CategoricalSummary{},
		NullCategoricals: []string{},
		Continuous:       []ContinuousSummary{},
	}
	for _, i := range a.Categoricals() {
		cs, ok := summariseCategorical(t.Columns[i], opt.TopCategories)
		if !ok {
			rep.NullCategoricals = append(rep.NullCategoricals, a.Label(i))
			continue
		}
		rep.Categoricals = append(rep.Categoricals, cs)
	}
	for _, i := range a.Numerics() {
		rep.Continuous = append(rep.Continuous, summariseContinuous(t.Columns[i]))
	}

	if t.Rows() > 0 {
		rk, err := score.ScoreAndRank(ctx, t, a, score.Options{TopN: opt.TopN, Workers: opt.Workers})
		if err != nil {
			return nil, eris.Wrap(err, "analysis: score rows")
		}
		u := &UnusualRows{Columns: rk.Columns, Rows: make([]UnusualRow, 0, len(rk.Rows))}
		for _, r := range rk.Rows {
			cells := make([]string, len(r.Cells))
			for j, v := range r.Cells {
				cells[j] = dataset.FormatCell(v)
			}
			u.Rows = append(u.Rows, UnusualRow{Index: r.Index, Score: r.Score, Cells: cells})
		}
		rep.Unusual = u
	}

	zap.L().Info("analysis: report built",
		zap.String("run_id", rep.RunID),
		zap.String("name", rep.Name),
		zap.Int("rows", rep.Rows),
		zap.Int("categoricals", len(rep.Categoricals)),
		zap.Int("continuous", len(rep.Continuous)),
	)
	return rep, nil
}

// summariseCategorical counts present values, most frequent first with ties
// in order of first appearance. Shares are taken over all rows, nulls
// included. It reports false when the column has no present value.
func summariseCategorical(c *dataset.Column, top int) (CategoricalSummary, bool) {
	type bucket struct {
		value string
		count int
	}
	idx := map[any]int{}
	var buckets []bucket
	nulls := 0
	for _, v := range c.Cells {
		if dataset.IsMissing(v) {
			nulls++
			continue
		}
		k := dataset.CellKey(v)
		if i, ok := idx[k]; ok {
			buckets[i].count++
			continue
		}
		idx[k] = len(buckets)
		buckets = append(buckets, bucket{value: dataset.FormatCell(v), count: 1})
	}
	if len(buckets) == 0 {
		return CategoricalSummary{}, false
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].count > buckets[j].count })
	if len(buckets) > top {
		buckets = buckets[:top]
	}

	rows := float64(c.Len())
	cs := CategoricalSummary{Name: c.Label(), Nulls: nulls, NullShare: float64(nulls) / rows}
	for _, b := range buckets {
		share := float64(b.count) / rows
		cs.Top = append(cs.Top, CategoryShare{Value: b.value, Count: b.count, Share: share})
		cs.TopShare += share
	}
	return cs, true
}

func summariseContinuous(c *dataset.Column) ContinuousSummary {
	vals := make([]float64, 0, c.Len())
	for _, v := range c.Cells {
		if x, ok := dataset.TryNumber(v); ok {
			vals = append(vals, x)
		}
	}
	cs := ContinuousSummary{Name: c.Label(), Count: len(vals)}
	if c.Len() > 0 {
		cs.NullShare = float64(c.Len()-len(vals)) / float64(c.Len())
	}
	if len(vals) == 0 {
		return cs
	}
	for _, x := range vals {
		cs.Sum += x
	}
	cs.Mean = cs.Sum / float64(len(vals))
	sort.Float64s(vals)
	cs.Min = vals[0]
	cs.Max = vals[len(vals)-1]
	cs.P10 = quantile(vals, 0.1)
	cs.P50 = quantile(vals, 0.5)
	cs.P90 = quantile(vals, 0.9)
	return cs
}
