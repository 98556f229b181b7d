package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lookatdata-cli/internal/analysis"
	"github.com/KaramelBytes/lookatdata-cli/internal/source"
	"github.com/KaramelBytes/lookatdata-cli/internal/utils"
)

var (
	descInput      inputFlags
	descReport     reportFlags
	descOutputPath string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarise a CSV/TSV/XLSX file and list its most unusual rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := descInput.options(cmd)
		if err != nil {
			return err
		}
		r, err := descReport.renderer()
		if err != nil {
			return err
		}
		tbl, err := source.LoadFile(args[0], opt)
		if err != nil {
			return err
		}
		rep, err := analysis.Describe(cmd.Context(), tbl, descReport.options())
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := r.Render(&buf, rep); err != nil {
			return err
		}
		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", descOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	descInput.register(describeCmd)
	descReport.register(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the report")
}
