package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/drgo/bibdoc"
)

// errProblems makes the command fail after all problems are printed.
var errProblems = errors.New("problems found")

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Parse files and run every typed getter, reporting field errors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		total := 0
		for _, path := range args {
			bib, err := parseFile(cmd, path)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				total++
				continue
			}
			n := checkBibliography(cmd.OutOrStdout(), bib)
			log.WithField("file", path).WithField("entries", bib.Len()).Infof("%d problems", n)
			total += n
		}
		if total > 0 {
			return fmt.Errorf("%d %w", total, errProblems)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checks are the getters exercised by check, by label.
var checks = []struct {
	label string
	run   func(e *bibdoc.Entry) error
}{
	{"inheritance", func(e *bibdoc.Entry) error { _, err := e.Bibliography().ResolvedFields(e); return err }},
	{"authors", func(e *bibdoc.Entry) error { _, _, err := e.Authors(); return err }},
	{"editors", func(e *bibdoc.Entry) error { _, _, err := e.Editors(); return err }},
	{"translators", func(e *bibdoc.Entry) error { _, _, err := e.Translators(); return err }},
	{"bookauthors", func(e *bibdoc.Entry) error { _, _, err := e.BookAuthors(); return err }},
	{"date", func(e *bibdoc.Entry) error { _, _, err := e.Date(); return err }},
	{"eventdate", func(e *bibdoc.Entry) error { _, _, err := e.DateOf("event"); return err }},
	{"origdate", func(e *bibdoc.Entry) error { _, _, err := e.DateOf("orig"); return err }},
	{"urldate", func(e *bibdoc.Entry) error { _, _, err := e.DateOf("url"); return err }},
}

func checkBibliography(w io.Writer, bib *bibdoc.Bibliography) int {
	n := 0
	for e := range bib.All() {
		for _, c := range checks {
			if err := c.run(e); err != nil {
				fmt.Fprintf(w, "%s:%d: %s: %v\n", bib.Name(), e.Line, c.label, err)
				n++
			}
		}
	}
	return n
}
