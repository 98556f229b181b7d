// Package score gives every row of a table an "unusualness" score: high
// for extreme continuous values and for rare categories. Rows are then
// ranked from most to least unusual.
package score

import (
	"context"
	"runtime"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/lookatdata-cli/internal/classify"
	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

// DefaultTopN is the number of rows returned when Options.TopN is not set.
const DefaultTopN = 5

// ErrMismatch is returned when the assignment was computed for another table.
var ErrMismatch = eris.New("score: assignment does not match table")

// Options controls scoring and ranking.
type Options struct {
	// TopN caps the ranked rows; values <= 0 mean DefaultTopN.
	TopN int
	// Workers bounds how many columns are scored concurrently; 0 means NumCPU.
	Workers int
}

// Table is the row score table: one vector per scored column, all of the
// same length.
type Table struct {
	Rows    int
	Vectors []Vector
}

// Totals sums the valid per-column scores of every row.
func (t *Table) Totals() []float64 {
	out := make([]float64, t.Rows)
	for _, v := range t.Vectors {
		for i, ok := range v.Valid {
			if ok {
				out[i] += v.Scores[i]
			}
		}
	}
	return out
}

// RankedRow is a row of the original table with its total score.
type RankedRow struct {
	Index int
	Score float64
	Cells []any
}

// Ranking is the ordered result of ScoreAndRank.
type Ranking struct {
	Columns []string
	Rows    []RankedRow
	Scores  *Table
}

type job struct {
	col int
	tag classify.Tag
}

// Score computes a vector for every date, numeric and categorical column of
// the assignment. Columns are scored concurrently into their own slots and
// merged in assignment order once all are done.
func Score(ctx context.Context, t *dataset.Table, a *classify.Assignment, workers int) (*Table, error) {
	if t == nil || a == nil || a.Len() != len(t.Columns) {
		return nil, ErrMismatch
	}
	var jobs []job
	for _, c := range a.Dates() {
		jobs = append(jobs, job{col: c, tag: classify.TagDate})
	}
	for _, c := range a.Numerics() {
		jobs = append(jobs, job{col: c, tag: classify.TagNumeric})
	}
	for _, c := range a.Categoricals() {
		jobs = append(jobs, job{col: c, tag: classify.TagCategorical})
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	slots := make([]*Vector, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			col := t.Columns[j.col]
			var v Vector
			switch j.tag {
			case classify.TagDate:
				v = DateScores(col)
			case classify.TagNumeric:
				v = NumericScores(col)
			case classify.TagCategorical:
				var ok bool
				if v, ok = CategoricalScores(col); !ok {
					return nil
				}
			}
			v.Column = j.col
			slots[i] = &v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Table{Rows: t.Rows()}
	for _, v := range slots {
		if v != nil {
			out.Vectors = append(out.Vectors, *v)
		}
	}
	return out, nil
}

// Rank orders rows by descending total score, keeping the original order
// among equal totals, and returns at most topN of them.
func Rank(t *dataset.Table, st *Table, topN int) []RankedRow {
	if topN <= 0 {
		topN = DefaultTopN
	}
	totals := st.Totals()
	order := make([]int, len(totals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return totals[order[a]] > totals[order[b]] })
	if len(order) > topN {
		order = order[:topN]
	}
	out := make([]RankedRow, 0, len(order))
	for _, i := range order {
		out = append(out, RankedRow{Index: i, Score: totals[i], Cells: t.Row(i)})
	}
	return out
}

// ScoreAndRank scores t and returns its most unusual rows. A table without
// rows yields an empty ranking without scoring anything.
func ScoreAndRank(ctx context.Context, t *dataset.Table, a *classify.Assignment, opt Options) (*Ranking, error) {
	if t == nil || a == nil || a.Len() != len(t.Columns) {
		return nil, ErrMismatch
	}
	r := &Ranking{Columns: t.Labels(), Rows: []RankedRow{}}
	if t.Rows() == 0 {
		r.Scores = &Table{}
		return r, nil
	}
	st, err := Score(ctx, t, a, opt.Workers)
	if err != nil {
		return nil, err
	}
	r.Scores = st
	r.Rows = Rank(t, st, opt.TopN)
	zap.L().Debug("score: rows ranked",
		zap.String("table", t.Name),
		zap.Int("rows", t.Rows()),
		zap.Int("scored_columns", len(st.Vectors)),
		zap.Int("returned", len(r.Rows)),
	)
	return r, nil
}
