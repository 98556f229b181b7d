package score

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/lookatdata-cli/internal/classify"
	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

func mustTable(t *testing.T, cols ...*dataset.Column) (*dataset.Table, *classify.Assignment) {
	t.Helper()
	tbl, err := dataset.NewTable("test", cols)
	require.NoError(t, err)
	a, err := classify.Classify(tbl)
	require.NoError(t, err)
	return tbl, a
}

func TestContinuousScores_TailsAndMedian(t *testing.T) {
	vals := []float64{3, 1, 5, 2, 4}
	valid := []bool{true, true, true, true, true}
	got := ContinuousScores(vals, valid)
	assert.InDelta(t, 0.0, got[0], 1e-9)
	assert.InDelta(t, 1.0, got[1], 1e-9)
	assert.InDelta(t, 1.0, got[2], 1e-9)
	assert.InDelta(t, 0.5, got[3], 1e-9)
	assert.InDelta(t, 0.5, got[4], 1e-9)
	for _, s := range got {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestContinuousScores_SingleValueAndMissing(t *testing.T) {
	got := ContinuousScores([]float64{0, 42, 0}, []bool{false, true, false})
	assert.Equal(t, []float64{0, 0, 0}, got)
}

func TestPercentileRanks_TiesShareAverage(t *testing.T) {
	got := PercentileRanks([]float64{1, 2, 2, 3}, []bool{true, true, true, true})
	assert.InDelta(t, 0.0, got[0], 1e-9)
	assert.InDelta(t, 0.5, got[1], 1e-9)
	assert.InDelta(t, 0.5, got[2], 1e-9)
	assert.InDelta(t, 1.0, got[3], 1e-9)
}

func TestFrequencyScores(t *testing.T) {
	got := FrequencyScores([]int{7, 2, 1})
	assert.InDelta(t, 0.0, got[7], 1e-9)
	assert.InDelta(t, 2.5/6, got[2], 1e-9)
	assert.InDelta(t, 1.0, got[1], 1e-9)

	even := FrequencyScores([]int{3, 3, 3})
	assert.Equal(t, map[int]float64{3: 0}, even)
	assert.Empty(t, FrequencyScores(nil))
}

func TestCategoricalScores_SkipsMissing(t *testing.T) {
	c := &dataset.Column{Name: "color", Kind: dataset.Text, Cells: []any{"red", nil, "red", "blue"}}
	v, ok := CategoricalScores(c)
	require.True(t, ok)
	assert.Equal(t, []bool{true, false, true, true}, v.Valid)
	assert.InDelta(t, 0.0, v.Scores[0], 1e-9)
	assert.InDelta(t, 1.0, v.Scores[3], 1e-9)

	_, ok = CategoricalScores(&dataset.Column{Name: "none", Kind: dataset.Text, Cells: []any{nil, nil}})
	assert.False(t, ok)
}

func TestDateScores_UsesEpochSeconds(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &dataset.Column{Name: "when", Kind: dataset.DateTime, Cells: []any{
		base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 2), nil,
	}}
	v := DateScores(c)
	assert.Equal(t, classify.TagDate, v.Category)
	assert.Equal(t, []bool{true, true, true, false}, v.Valid)
	assert.InDelta(t, 1.0, v.Scores[0], 1e-9)
	assert.InDelta(t, 0.0, v.Scores[1], 1e-9)
	assert.InDelta(t, 1.0, v.Scores[2], 1e-9)
}

func endToEnd(t *testing.T) (*dataset.Table, *classify.Assignment) {
	t.Helper()
	ids := make([]any, 10)
	regions := make([]any, 10)
	amounts := make([]any, 10)
	for i := 0; i < 10; i++ {
		ids[i] = float64(i + 1)
		regions[i] = "east"
		amounts[i] = float64(100 + i)
	}
	regions[3], regions[7] = "west", "west"
	regions[5] = "north"
	amounts[5] = 1050.0
	return mustTable(t,
		&dataset.Column{Name: "id", Kind: dataset.Numeric, Cells: ids},
		&dataset.Column{Name: "region", Kind: dataset.Text, Cells: regions},
		&dataset.Column{Name: "amount", Kind: dataset.Numeric, Cells: amounts},
	)
}

func TestScoreAndRank_EndToEnd(t *testing.T) {
	tbl, a := endToEnd(t)
	assert.NotContains(t, a.Numerics(), 0)
	assert.Equal(t, []int{1}, a.Categoricals())

	r, err := ScoreAndRank(context.Background(), tbl, a, Options{})
	require.NoError(t, err)
	require.Len(t, r.Rows, DefaultTopN)
	assert.Equal(t, 5, r.Rows[0].Index)
	assert.Equal(t, []any{6.0, "north", 1050.0}, r.Rows[0].Cells)
	assert.Equal(t, []string{"id", "region", "amount"}, r.Columns)

	var region Vector
	for _, v := range r.Scores.Vectors {
		if v.Column == 1 {
			region = v
		}
	}
	assert.InDelta(t, 1.0, region.Scores[5], 1e-9)
	assert.InDelta(t, 0.0, region.Scores[0], 1e-9)
}

func TestScore_VectorOrderFollowsCategories(t *testing.T) {
	tbl, a := mustTable(t,
		&dataset.Column{Name: "label", Kind: dataset.Text, Cells: []any{"alpha", "beta"}},
		&dataset.Column{Name: "amount", Kind: dataset.Numeric, Cells: []any{1.0, 2.0}},
		&dataset.Column{Name: "day", Kind: dataset.DateTime, Cells: []any{time.Unix(0, 0), time.Unix(86400, 0)}},
	)
	st, err := Score(context.Background(), tbl, a, 1)
	require.NoError(t, err)
	require.Len(t, st.Vectors, 3)
	assert.Equal(t, 2, st.Vectors[0].Column)
	assert.Equal(t, 1, st.Vectors[1].Column)
	assert.Equal(t, 0, st.Vectors[2].Column)
}

func TestScoreAndRank_IsDeterministic(t *testing.T) {
	tbl, a := endToEnd(t)
	first, err := ScoreAndRank(context.Background(), tbl, a, Options{TopN: 10, Workers: 4})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ScoreAndRank(context.Background(), tbl, a, Options{TopN: 10, Workers: 4})
		require.NoError(t, err)
		assert.Equal(t, first.Rows, again.Rows)
	}
}

func TestScoreAndRank_TopNTruncates(t *testing.T) {
	tbl, a := endToEnd(t)
	r, err := ScoreAndRank(context.Background(), tbl, a, Options{TopN: 2})
	require.NoError(t, err)
	assert.Len(t, r.Rows, 2)

	r, err = ScoreAndRank(context.Background(), tbl, a, Options{TopN: 50})
	require.NoError(t, err)
	assert.Len(t, r.Rows, 10)
}

func TestScoreAndRank_TiesKeepRowOrder(t *testing.T) {
	tbl, a := mustTable(t,
		&dataset.Column{Name: "label", Kind: dataset.Text, Cells: []any{"same", "same", "same"}},
	)
	r, err := ScoreAndRank(context.Background(), tbl, a, Options{})
	require.NoError(t, err)
	require.Len(t, r.Rows, 3)
	for i, row := range r.Rows {
		assert.Equal(t, i, row.Index)
		assert.Zero(t, row.Score)
	}
}

func TestScoreAndRank_ZeroRows(t *testing.T) {
	tbl, a := mustTable(t,
		&dataset.Column{Name: "amount", Kind: dataset.Numeric, Cells: []any{}},
	)
	r, err := ScoreAndRank(context.Background(), tbl, a, Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Rows)
	assert.Empty(t, r.Scores.Vectors)
}

func TestScoreAndRank_NothingScorable(t *testing.T) {
	tbl, a := mustTable(t,
		&dataset.Column{Name: "flag", Kind: dataset.Unknown, Cells: []any{true, false}},
	)
	r, err := ScoreAndRank(context.Background(), tbl, a, Options{})
	require.NoError(t, err)
	require.Len(t, r.Rows, 2)
	assert.Zero(t, r.Rows[0].Score)
}

func TestScore_Mismatch(t *testing.T) {
	tbl, _ := endToEnd(t)
	_, other := mustTable(t, &dataset.Column{Name: "x", Kind: dataset.Numeric, Cells: []any{1.0}})
	_, err := ScoreAndRank(context.Background(), tbl, other, Options{})
	assert.ErrorIs(t, err, ErrMismatch)
	_, err = Score(context.Background(), tbl, nil, 0)
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestScore_CancelledContext(t *testing.T) {
	tbl, a := endToEnd(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Score(ctx, tbl, a, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
