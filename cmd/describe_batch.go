package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/lookatdata-cli/internal/analysis"
	"github.com/KaramelBytes/lookatdata-cli/internal/source"
	"github.com/KaramelBytes/lookatdata-cli/internal/utils"
)

var (
	dbInput     inputFlags
	dbReport    reportFlags
	dbOutputDir string
	dbQuiet     bool
	dbKeepGoing bool
)

var describeBatchCmd = &cobra.Command{
	Use:   "describe-batch <files...>",
	Short: "Describe multiple CSV/TSV/XLSX files, one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return eris.New("no input files matched")
		}
		opt, err := dbInput.options(cmd)
		if err != nil {
			return err
		}
		r, err := dbReport.renderer()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ext := analysis.Extension(dbReport.formatName())

		total := len(files)
		failed := 0
		for i, path := range files {
			if !dbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			if !source.CanLoad(path) {
				if !dbQuiet {
					fmt.Fprintf(out, "⚠ Skipping %s: unsupported format\n", filepath.Base(path))
				}
				continue
			}
			buf, err := describeFile(cmd, path, opt, r)
			if err != nil {
				if !dbKeepGoing {
					return eris.Wrapf(err, "describe %s", path)
				}
				failed++
				zap.L().Warn("describe-batch: file failed", zap.String("file", path), zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", filepath.Base(path), err)
				continue
			}

			if dbOutputDir == "" {
				if !dbQuiet {
					_, _ = out.Write(buf)
					fmt.Fprintln(out)
				}
				continue
			}
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if opt.SheetName != "" {
				if s := utils.Slug(opt.SheetName); s != "" {
					base += "__sheet-" + s
				}
			}
			dest := utils.UniqueOutputPath(dbOutputDir, base, "report."+ext)
			if err := utils.SafeWriteFile(dest, buf); err != nil {
				return err
			}
			if !dbQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", dest)
			}
		}
		if failed > 0 {
			return eris.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

func describeFile(cmd *cobra.Command, path string, opt source.Options, r analysis.Renderer) ([]byte, error) {
	tbl, err := source.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	rep, err := analysis.Describe(cmd.Context(), tbl, dbReport.options())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func init() {
	rootCmd.AddCommand(describeBatchCmd)
	dbInput.register(describeBatchCmd)
	dbReport.register(describeBatchCmd)
	describeBatchCmd.Flags().StringVar(&dbOutputDir, "output-dir", "", "directory receiving one <name>.report.<ext> per file")
	describeBatchCmd.Flags().BoolVar(&dbQuiet, "quiet", false, "suppress progress and non-essential output")
	describeBatchCmd.Flags().BoolVar(&dbKeepGoing, "keep-going", false, "continue with the next file when one fails")
}
