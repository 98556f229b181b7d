package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lookatdata-cli/internal/analysis"
	"github.com/KaramelBytes/lookatdata-cli/internal/classify"
	"github.com/KaramelBytes/lookatdata-cli/internal/dataset"
	"github.com/KaramelBytes/lookatdata-cli/internal/score"
	"github.com/KaramelBytes/lookatdata-cli/internal/source"
	"github.com/KaramelBytes/lookatdata-cli/internal/utils"
)

var (
	unInput  inputFlags
	unReport reportFlags
)

var unusualCmd = &cobra.Command{
	Use:   "unusual <file>",
	Short: "List the rows with the most extreme values and rarest categories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := unInput.options(cmd)
		if err != nil {
			return err
		}
		tbl, err := source.LoadFile(args[0], opt)
		if err != nil {
			return err
		}
		a, err := classify.Classify(tbl)
		if err != nil {
			return err
		}
		ro := unReport.options()
		rk, err := score.ScoreAndRank(cmd.Context(), tbl, a, score.Options{TopN: ro.TopN, Workers: ro.Workers})
		if err != nil {
			return err
		}

		rows := make([]analysis.UnusualRow, 0, len(rk.Rows))
		for _, r := range rk.Rows {
			cells := make([]string, len(r.Cells))
			for i, v := range r.Cells {
				cells[i] = dataset.FormatCell(v)
			}
			rows = append(rows, analysis.UnusualRow{Index: r.Index, Score: r.Score, Cells: cells})
		}
		res := analysis.UnusualRows{Columns: rk.Columns, Rows: rows}

		out := cmd.OutOrStdout()
		if strings.EqualFold(unReport.format, "json") {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "No rows.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "ROW\tSCORE\t%s\n", strings.Join(res.Columns, "\t"))
		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", r.Index, analysis.ReadableNumber(r.Score), strings.Join(r.Cells, "\t"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(unusualCmd)
	unInput.register(unusualCmd)
	unReport.register(unusualCmd)
}
