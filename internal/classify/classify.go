// Package classify guesses the semantic role of each column of a table:
// dates, categorical variables and continuous variables, plus the helper tags
// used to exclude columns from those roles.
package classify

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
)

var (
	// ErrInvalidInput is returned when the input is not a usable table.
	ErrInvalidInput = eris.New("classify: input is not a table")
	// ErrEmptyColumnSet is returned for a table without columns.
	ErrEmptyColumnSet = eris.New("classify: table has no columns")
)

// Tag is a label attached to a column by the classifier.
type Tag string

const (
	TagDate        Tag = "date"
	TagCategorical Tag = "categorical"
	TagNumeric     Tag = "numeric"
	TagAllNull     Tag = "all_null"
	TagIDSuffixed  Tag = "id_suffixed"
	TagYNSuffixed  Tag = "yn_suffixed"
)

// Assignment is the immutable result of Classify. Column references are
// positions in the classified table.
type Assignment struct {
	labels []string

	texts    []int
	dateVals []int
	numVals  []int
	allNulls []int
	anyNulls []int
	uniques  []int
	idSuffix []int
	ynSuffix []int

	dates        []int
	categoricals []int
	numerics     []int
}

// Classify inspects every column of t once and returns its category
// assignment. It never mutates t.
func Classify(t *dataset.Table) (*Assignment, error) {
	if t == nil {
		return nil, eris.Wrap(ErrInvalidInput, "classify: nil table")
	}
	if err := t.Validate(); err != nil {
		return nil, eris.Wrapf(ErrInvalidInput, "classify: %v", err)
	}
	if len(t.Columns) == 0 {
		return nil, ErrEmptyColumnSet
	}

	a := &Assignment{labels: t.Labels()}
	for i, c := range t.Columns {
		switch c.Kind {
		case dataset.Text:
			a.texts = append(a.texts, i)
		case dataset.DateTime:
			a.dateVals = append(a.dateVals, i)
		case dataset.Numeric:
			a.numVals = append(a.numVals, i)
		case dataset.Unknown:
		}
	}
	for i, c := range t.Columns {
		nulls := c.NullCount()
		if nulls == c.Len() {
			a.allNulls = append(a.allNulls, i)
		}
		if nulls > 0 {
			a.anyNulls = append(a.anyNulls, i)
		}
		if distinctCount(c) == c.Len()-nulls {
			a.uniques = append(a.uniques, i)
		}
		if allParseAsDates(c) {
			a.dateVals = append(a.dateVals, i)
		}
		switch lastTwoLower(c.Name) {
		case "id":
			a.idSuffix = append(a.idSuffix, i)
		case "yn":
			a.ynSuffix = append(a.ynSuffix, i)
		}
	}

	a.dates = combine(a.dateVals, nil)
	a.categoricals = combine(slices.Concat(a.ynSuffix, a.texts), a.dateVals)
	a.numerics = combine(a.numVals, slices.Concat(a.idSuffix, a.categoricals, a.allNulls))

	zap.L().Debug("classify: columns classified",
		zap.String("table", t.Name),
		zap.Int("columns", len(t.Columns)),
		zap.Int("dates", len(a.dates)),
		zap.Int("categoricals", len(a.categoricals)),
		zap.Int("numerics", len(a.numerics)),
	)
	return a, nil
}

// allParseAsDates is the fallback date test: every cell must be a string
// that parses as a date. A single missing, non-string or malformed cell
// disqualifies the column, and so does an empty column.
func allParseAsDates(c *dataset.Column) bool {
	if c.Len() == 0 {
		return false
	}
	for _, v := range c.Cells {
		s, ok := v.(string)
		if !ok {
			return false
		}
		if _, ok := dataset.TryParseDate(s); !ok {
			return false
		}
	}
	return true
}

// lastTwoLower returns the last two characters of a string name, lower-cased.
// Shorter names are returned whole; non-string names yield "".
func lastTwoLower(name any) string {
	s, ok := name.(string)
	if !ok {
		return ""
	}
	r := []rune(s)
	if len(r) > 2 {
		r = r[len(r)-2:]
	}
	return strings.ToLower(string(r))
}

func distinctCount(c *dataset.Column) int {
	seen := make(map[any]struct{}, c.Len())
	for _, v := range c.Cells {
		if dataset.IsMissing(v) {
			continue
		}
		seen[dataset.CellKey(v)] = struct{}{}
	}
	return len(seen)
}

// combine returns include without duplicates and without anything listed in
// exclude, keeping first-seen order.
func combine(include, exclude []int) []int {
	skip := make(map[int]struct{}, len(exclude)+len(include))
	for _, c := range exclude {
		skip[c] = struct{}{}
	}
	out := []int{}
	for _, c := range include {
		if _, ok := skip[c]; ok {
			continue
		}
		out = append(out, c)
		skip[c] = struct{}{}
	}
	return out
}
