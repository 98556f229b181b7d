package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lookatdata-cli/internal/classify"
	"github.com/KaramelBytes/lookatdata-cli/internal/source"
	"github.com/KaramelBytes/lookatdata-cli/internal/utils"
)

var (
	clsInput  inputFlags
	clsFormat string
)

type columnClass struct {
	Index int            `json:"index"`
	Name  string         `json:"name"`
	Kind  string         `json:"kind"`
	Tags  []classify.Tag `json:"tags"`
}

type classification struct {
	Name    string              `json:"name"`
	Columns []columnClass       `json:"columns"`
	Classes map[string][]string `json:"classes"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Show how each column of a file is classified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := clsInput.options(cmd)
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
		res := classification{Name: tbl.Name, Classes: a.Map()}
		for i, c := range tbl.Columns {
			tags := a.Tags(i)
			if tags == nil {
				tags = []classify.Tag{}
			}
			res.Columns = append(res.Columns, columnClass{Index: i, Name: a.Label(i), Kind: c.Kind.String(), Tags: tags})
		}

		out := cmd.OutOrStdout()
		if strings.EqualFold(clsFormat, "json") {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "#\tCOLUMN\tKIND\tTAGS")
		_, _ = fmt.Fprintln(w, "-\t------\t----\t----")
		for _, c := range res.Columns {
			tags := make([]string, len(c.Tags))
			for i, t := range c.Tags {
				tags[i] = string(t)
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.Index, c.Name, c.Kind, strings.Join(tags, ","))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	clsInput.register(classifyCmd)
	classifyCmd.Flags().StringVarP(&clsFormat, "format", "f", "text", "output format: text|json")
}
