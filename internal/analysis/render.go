package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
)

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, r *Report) error
}

// Formats lists the names accepted by RendererFor.
var Formats = []string{"markdown", "text", "json"}

// RendererFor returns the renderer for a format name.
func RendererFor(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return MarkdownRenderer{}, nil
	case "text", "txt":
		return TextRenderer{}, nil
	case "json":
		return JSONRenderer{}, nil
	}
	return nil, eris.Errorf("analysis: unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// Extension returns the file extension used for a format's output files.
func Extension(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "txt":
		return "txt"
	case "json":
		return "json"
	}
	return "md"
}

var continuousHeader = []string{"column", "count", "sum", "mean", "%null", "min", "10%", "50%", "90%", "max"}

func continuousRow(c ContinuousSummary) []string {
	return []string{
		safeName(c.Name),
		ReadableInt(c.Count),
		ReadableNumber(c.Sum),
		ReadableNumber(c.Mean),
		ReadableNumber(c.NullShare),
		ReadableNumber(c.Min),
		ReadableNumber(c.P10),
		ReadableNumber(c.P50),
		ReadableNumber(c.P90),
		ReadableNumber(c.Max),
	}
}

// MarkdownRenderer renders sections with bracketed titles and pipe tables.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Render(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, r.Markdown())
	return eris.Wrap(err, "analysis: write markdown")
}

// Markdown returns the report as Markdown.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %s\n", ReadableInt(r.Rows)))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.Columns))
	b.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))

	b.WriteString("[CATEGORICAL VARIABLES]\n")
	if len(r.Categoricals) == 0 && len(r.NullCategoricals) == 0 {
		b.WriteString("No categorical variables.\n")
	}
	for _, c := range r.Categoricals {
		b.WriteString(fmt.Sprintf("- %s: ", safeName(c.Name)))
		for i, kv := range c.Top {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("%s (%s)", safeVal(clip(kv.Value, 80)), sharePct(kv.Share)))
		}
		b.WriteString(fmt.Sprintf("; top %d represent %s of rows", len(c.Top), shortPct(c.TopShare)))
		if c.Nulls > 0 {
			b.WriteString(fmt.Sprintf("; %s of rows are null\n", shortPct(c.NullShare)))
		} else {
			b.WriteString("; no rows are null\n")
		}
	}
	if len(r.NullCategoricals) > 0 {
		b.WriteString("- entirely null: ")
		b.WriteString(strings.Join(r.NullCategoricals, ", "))
		b.WriteString("\n")
	}

	b.WriteString("\n[CONTINUOUS VARIABLES]\n")
	if len(r.Continuous) == 0 {
		b.WriteString("No continuous variables.\n")
	} else {
		writePipeRow(&b, continuousHeader)
		writePipeRule(&b, len(continuousHeader))
		for _, c := range r.Continuous {
			writePipeRow(&b, continuousRow(c))
		}
	}

	if r.Unusual != nil {
		b.WriteString("\n[UNUSUAL ROWS]\n")
		hdr := append([]string{"row", "score"}, r.Unusual.Columns...)
		for i := range hdr {
			hdr[i] = safeName(hdr[i])
		}
		writePipeRow(&b, hdr)
		writePipeRule(&b, len(hdr))
		for _, row := range r.Unusual.Rows {
			cells := append([]string{ReadableInt(row.Index), ReadableNumber(row.Score)}, row.Cells...)
			for i := range cells {
				cells[i] = safeVal(clip(cells[i], 80))
			}
			writePipeRow(&b, cells)
		}
	}
	return b.String()
}

func writePipeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func writePipeRule(b *strings.Builder, n int) {
	rule := make([]string, n)
	for i := range rule {
		rule[i] = "---"
	}
	writePipeRow(b, rule)
}

// TextRenderer renders plain text with boxed section headers and aligned
// columns.
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, r *Report) error {
	ew := &errWriter{w: w}
	if r.Name != "" {
		ew.printf("%s: %s rows, %d columns (run %s)\n\n", r.Name, ReadableInt(r.Rows), r.Columns, r.RunID)
	}

	if len(r.Categoricals) == 0 && len(r.NullCategoricals) == 0 {
		ew.printf("No categorical variables.\n")
	} else {
		ew.printf("%s\n", Header("Categorical Variables"))
		for _, c := range r.Categoricals {
			tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tw, "\t%s\t\n", safeName(c.Name))
			for _, kv := range c.Top {
				fmt.Fprintf(tw, "%s\t%s\t\n", safeVal(clip(kv.Value, 60)), sharePct(kv.Share))
			}
			_ = tw.Flush()
			ew.printf("Top %d represent %s of rows.\n", len(c.Top), shortPct(c.TopShare))
			if c.Nulls > 0 {
				ew.printf("%s of rows are null\n\n\n", shortPct(c.NullShare))
			} else {
				ew.printf("No rows are null\n\n\n")
			}
		}
		if len(r.NullCategoricals) > 0 {
			ew.printf("The following categorical columns are entirely null:\n\n")
			for _, n := range r.NullCategoricals {
				ew.printf("%s\n", n)
			}
		}
	}

	if len(r.Continuous) == 0 {
		ew.printf("No continuous variables.\n")
	} else {
		ew.printf("%s\n", Header("Continuous Variables"))
		tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "%s\t\n", strings.Join(continuousHeader, "\t"))
		for _, c := range r.Continuous {
			fmt.Fprintf(tw, "%s\t\n", strings.Join(continuousRow(c), "\t"))
		}
		_ = tw.Flush()
	}

	if r.Unusual != nil {
		ew.printf("%s\n", Header("Rows with high percentile values and/or rare categories"))
		tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "row\tscore\t%s\n", strings.Join(r.Unusual.Columns, "\t"))
		for _, row := range r.Unusual.Rows {
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = strings.ReplaceAll(clip(c, 40), "\t", " ")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Index, ReadableNumber(row.Score), strings.Join(cells, "\t"))
		}
		_ = tw.Flush()
	}
	return eris.Wrap(ew.err, "analysis: write text")
}

// Header draws text inside a box of '+' and '-' characters.
func Header(text string) string {
	n := len([]rune(text))
	bounds := "+" + strings.Repeat("-", n+2) + "+"
	return bounds + "\n+ " + text + " +\n" + bounds
}

// JSONRenderer renders the report as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(r), "analysis: write json")
}

// errWriter remembers the first write error so rendering code can print
// without checking every call.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e, format, args...)
}
