package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lookatdata-cli/internal/analysis"
	"github.com/KaramelBytes/lookatdata-cli/internal/source"
	"github.com/KaramelBytes/lookatdata-cli/internal/utils"
)

var (
	qDriver     string
	qDSN        string
	qName       string
	qMaxRows    int
	qOutputPath string
	qReport     reportFlags
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Describe the result set of a SQL query (sqlite, pgx, snowflake)",
	Long: `Runs a query and describes its result set like a file. The DSN comes from
--dsn or the LOOKATDATA_DSN environment variable, which may be set in a .env file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := qDSN
		if dsn == "" {
			dsn = os.Getenv("LOOKATDATA_DSN")
		}
		if dsn == "" {
			return eris.New("no DSN: pass --dsn or set LOOKATDATA_DSN")
		}
		driver := qDriver
		if driver == "" {
			driver = os.Getenv("LOOKATDATA_DRIVER")
		}
		if driver == "" {
			driver = "sqlite"
		}
		r, err := qReport.renderer()
		if err != nil {
			return err
		}

		opt := source.DefaultOptions()
		if cfg != nil {
			opt.MaxRows = cfg.MaxRows
			opt.Number = cfg.NumberFormat()
		}
		if cmd.Flags().Changed("max-rows") {
			opt.MaxRows = qMaxRows
		}
		ctx := cmd.Context()
		db, err := source.Open(ctx, driver, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		tbl, err := source.ReadQuery(ctx, db, qName, strings.TrimSpace(args[0]), opt)
		if err != nil {
			return err
		}
		rep, err := analysis.Describe(ctx, tbl, qReport.options())
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := r.Render(&buf, rep); err != nil {
			return err
		}
		if qOutputPath != "" {
			if err := utils.SafeWriteFile(qOutputPath, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", qOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	qReport.register(queryCmd)
	queryCmd.Flags().StringVar(&qDriver, "driver", "", "database driver: "+strings.Join(source.Drivers, "|")+" (default $LOOKATDATA_DRIVER or sqlite)")
	queryCmd.Flags().StringVar(&qDSN, "dsn", "", "data source name (default $LOOKATDATA_DSN)")
	queryCmd.Flags().StringVar(&qName, "name", "query", "name shown in the report")
	queryCmd.Flags().IntVar(&qMaxRows, "max-rows", 0, "maximum rows to load (0 = config value)")
	queryCmd.Flags().StringVarP(&qOutputPath, "output", "o", "", "optional path to write the report")
}
