package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drgo/bibdoc"
)

var setActions = map[string]bibdoc.SetActionType{
	"none":      bibdoc.SetNoAction,
	"intersect": bibdoc.SetIntersect,
	"union":     bibdoc.SetUnion,
}

var dedupCmd = &cobra.Command{
	Use:   "dedup FILE...",
	Short: "Find duplicate entries across files and merge or intersect them",
	Long: `Find duplicate entries across files. Entries are duplicates when the
effective values of --fields, folded to lower-case letters and digits, are
equal; "citekey" stands for the citation key. With --action union or
intersect the resulting entries are written as BibTeX, with repeated keys
made unique. With --similar, near duplicates of one field are listed
instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		actionName, _ := cmd.Flags().GetString("action")
		similar, _ := cmd.Flags().GetString("similar")
		output, _ := cmd.Flags().GetString("output")
		action, ok := setActions[actionName]
		if !ok {
			return fmt.Errorf("unknown action %q: use none, intersect or union", actionName)
		}

		bibs := make([]*bibdoc.Bibliography, 0, len(args))
		for _, path := range args {
			bib, err := parseFile(cmd, path)
			if err != nil {
				return err
			}
			bibs = append(bibs, bib)
		}

		if similar != "" {
			return printSimilar(cmd, bibs, similar)
		}

		entries, dr, err := bibdoc.Deduplicate(bibs, cfg.Dedup.Fields, action)
		if err != nil {
			return err
		}
		if action == bibdoc.SetNoAction {
			return dr.Print(cmd.OutOrStdout())
		}
		if err := dr.Print(cmd.ErrOrStderr()); err != nil {
			return err
		}
		w, closeFn, err := createOutput(cmd, output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeFn(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return bibdoc.WriteBibTeX(w, bibdoc.FixKeys(entries, false), false)
	},
}

func init() {
	rootCmd.AddCommand(dedupCmd)
	f := dedupCmd.Flags()
	f.StringSlice("fields", []string{"year", "title"}, "fields forming the duplicate index")
	f.String("action", "none", "set action: none, intersect or union")
	f.String("similar", "", "list near duplicates of this field instead")
	f.Float64("threshold", 0.9, "similarity threshold for --similar, between 0 and 1")
	f.StringP("output", "o", "", "write merged entries to this file instead of stdout")
	bindFlagToViper("dedup.fields", f.Lookup("fields"))
	bindFlagToViper("dedup.threshold", f.Lookup("threshold"))
}

func printSimilar(cmd *cobra.Command, bibs []*bibdoc.Bibliography, field string) error {
	var all []*bibdoc.Entry
	for _, b := range bibs {
		all = append(all, b.Entries()...)
	}
	groups, err := bibdoc.FindSimilar(all, field, cfg.Dedup.Threshold)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d groups of similar %s found\n", len(groups), field)
	for i, g := range groups {
		fmt.Fprintf(w, "group %d:\n", i+1)
		for _, e := range g {
			v, _, _ := e.Literal(field)
			fmt.Fprintf(w, "\t%s:%d\t%s\t%s\n", e.Bibliography().Name(), e.Line, e.Key, v)
		}
	}
	return nil
}
