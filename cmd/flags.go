package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lookatdata-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/lookatdata-cli/internal/config"
	"github.com/KaramelBytes/lookatdata-cli/internal/source"
)

// inputFlags are the file parsing flags shared by commands that load files.
type inputFlags struct {
	delimiter  string
	encoding   string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (default from extension)")
	fl.StringVar(&f.encoding, "encoding", "", "CSV charset, e.g. latin1 or windows-1252 (default UTF-8)")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to load (0 = config value)")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// options merges the configuration with the flags that were set.
func (f *inputFlags) options(cmd *cobra.Command) (source.Options, error) {
	opt := source.DefaultOptions()
	if cfg != nil {
		opt.MaxRows = cfg.MaxRows
		opt.Delimiter = cfg.DelimiterRune()
		opt.Encoding = cfg.Encoding
		opt.Number = cfg.NumberFormat()
	}
	fl := cmd.Flags()
	if fl.Changed("max-rows") {
		opt.MaxRows = f.maxRows
	}
	if fl.Changed("delimiter") {
		r, err := cfgpkg.ParseDelimiter(f.delimiter)
		if err != nil {
			return opt, err
		}
		opt.Delimiter = r
	}
	if fl.Changed("encoding") {
		opt.Encoding = f.encoding
	}
	if fl.Changed("decimal") {
		r, err := cfgpkg.ParseDecimal(f.decimal)
		if err != nil {
			return opt, err
		}
		opt.Number.DecimalSeparator = r
	}
	if fl.Changed("thousands") {
		r, err := cfgpkg.ParseThousands(f.thousands)
		if err != nil {
			return opt, err
		}
		opt.Number.ThousandsSeparator = r
	}
	opt.SheetName = f.sheetName
	opt.SheetIndex = f.sheetIndex
	return opt, nil
}

// reportFlags control report contents and format.
type reportFlags struct {
	format        string
	topN          int
	topCategories int
	workers       int
}

func (f *reportFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.format, "format", "f", "", "output format: markdown|text|json (default from config)")
	fl.IntVarP(&f.topN, "top-n", "n", 0, "number of unusual rows to list (default from config)")
	fl.IntVar(&f.topCategories, "top-categories", 0, "values shown per categorical column (default from config)")
	fl.IntVar(&f.workers, "workers", 0, "columns scored concurrently (0 = config value or NumCPU)")
}

func (f *reportFlags) options() analysis.Options {
	opt := analysis.DefaultOptions()
	if cfg != nil {
		if cfg.TopN > 0 {
			opt.TopN = cfg.TopN
		}
		if cfg.TopCategories > 0 {
			opt.TopCategories = cfg.TopCategories
		}
		opt.Workers = cfg.Workers
	}
	if f.topN > 0 {
		opt.TopN = f.topN
	}
	if f.topCategories > 0 {
		opt.TopCategories = f.topCategories
	}
	if f.workers > 0 {
		opt.Workers = f.workers
	}
	return opt
}

func (f *reportFlags) formatName() string {
	if f.format != "" {
		return f.format
	}
	if cfg != nil && cfg.Format != "" {
		return cfg.Format
	}
	return "markdown"
}

func (f *reportFlags) renderer() (analysis.Renderer, error) {
	return analysis.RendererFor(f.formatName())
}
