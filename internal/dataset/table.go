// Package dataset holds the in-memory table model shared by the classifier,
// the scorer and the report.
package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Kind is the storage kind of a column, decided once when the table is loaded.
type Kind int

const (
	Unknown Kind = iota
	Text
	Numeric
	DateTime
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	case DateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// ErrRaggedColumns is returned when columns of a table differ in length.
var ErrRaggedColumns = eris.New("dataset: columns have different lengths")

// Column is a named, typed sequence of cells. A nil cell is missing.
type Column struct {
	// Name is usually a string. Spreadsheet headers may yield numbers, and a
	// blank header yields nil.
	Name  any
	Kind  Kind
	Cells []any
}

// Label renders the column name for display.
func (c *Column) Label() string {
	switch n := c.Name.(type) {
	case nil:
		return "(unnamed)"
	case string:
		if s := strings.TrimSpace(n); s != "" {
			return s
		}
		return "(unnamed)"
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	default:
		return fmt.Sprint(n)
	}
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Cells) }

// Missing reports whether cell i is missing.
func (c *Column) Missing(i int) bool { return IsMissing(c.Cells[i]) }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Cells {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// IsMissing reports whether v counts as a missing value.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Table is an ordered collection of equally long columns. Row identity is the
// 0-based position and stays stable for the lifetime of the table.
type Table struct {
	Name    string
	Columns []*Column
}

// NewTable validates the columns and builds a Table.
func NewTable(name string, cols []*Column) (*Table, error) {
	t := &Table{Name: name, Columns: cols}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 || t.Columns[0] == nil {
		return 0
	}
	return t.Columns[0].Len()
}

// Validate checks the rectangular shape. Tables assembled by hand go through
// here before analysis.
func (t *Table) Validate() error {
	for i, c := range t.Columns {
		if c == nil {
			return eris.Wrapf(ErrRaggedColumns, "dataset: column %d is nil", i)
		}
		if want := t.Columns[0].Len(); c.Len() != want {
			return eris.Wrapf(ErrRaggedColumns, "dataset: column %q has %d rows, want %d", c.Label(), c.Len(), want)
		}
	}
	return nil
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = c.Cells[i]
	}
	return out
}

// Labels returns display labels for all columns.
func (t *Table) Labels() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label()
	}
	return out
}

// CellKey makes a cell usable as a map key for frequency counts. Plain
// comparable values key themselves; anything else keys by type and printed
// form.
func CellKey(v any) any {
	switch v.(type) {
	case string, float64, int64, bool:
		return v
	}
	return fmt.Sprintf("%T|%v", v, v)
}

// FormatCell renders a cell for tables and samples.
func FormatCell(v any) string {
	if IsMissing(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	case int64:
		return fmt.Sprintf("%d", x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}
