package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drgo/bibdoc"
	"github.com/drgo/bibdoc/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query FILE --filter EXPR",
	Short: "List entries matching a CEL expression",
	Long: `List entries matching a CEL expression. The expression sees key, kind,
year, fields (effective field values by name), authors, editors and keywords:

  bibdoc query refs.bib --filter 'kind == "article" && year >= 2015'
  bibdoc query refs.bib --filter 'authors.exists(a, a == "Knuth")'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr, _ := cmd.Flags().GetString("filter")
		full, _ := cmd.Flags().GetBool("print")
		f, err := query.Compile(expr)
		if err != nil {
			return err
		}
		bib, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}
		matches := query.Select(f, bib, func(e *bibdoc.Entry, err error) {
			log.WithError(err).WithField("key", e.Key).Warn("entry skipped")
		})
		w := cmd.OutOrStdout()
		if full {
			return bibdoc.Print(w, matches)
		}
		for _, e := range matches {
			fmt.Fprintln(w, e.Key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().String("filter", "", "CEL expression selecting entries")
	queryCmd.Flags().Bool("print", false, "print matching entries instead of their keys")
	cobra.CheckErr(queryCmd.MarkFlagRequired("filter"))
}
