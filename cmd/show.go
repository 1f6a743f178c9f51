package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/drgo/bibdoc"
)

var showCmd = &cobra.Command{
	Use:   "show FILE [KEY...]",
	Short: "Print entries with their effective fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		bib, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}
		entries := bib.Entries()
		if keys := args[1:]; len(keys) > 0 {
			entries = entries[:0]
			for _, key := range keys {
				e, ok := bib.Get(key)
				if !ok {
					return fmt.Errorf("no entry with key %q in %s", key, args[0])
				}
				entries = append(entries, e)
			}
		}
		w := cmd.OutOrStdout()
		for _, e := range entries {
			if err := showEntry(w, e, raw); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("raw", false, "print own fields only, without inheritance")
}

func showEntry(w io.Writer, e *bibdoc.Entry, raw bool) error {
	fmt.Fprintf(w, "type = %s\n", e.Kind)
	fmt.Fprintf(w, "key = %s\n", e.Key)
	fields := e.Fields()
	if !raw {
		var err error
		if fields, err = e.Bibliography().ResolvedFields(e); err != nil {
			fmt.Fprintf(w, "\t! %v\n", err)
			fields = e.Fields()
		}
	}
	for _, f := range fields {
		fmt.Fprintf(w, "\t%s\t= %s\n", f.Name, f.Value)
	}
	if names, ok, err := e.Authors(); err != nil {
		fmt.Fprintf(w, "\t! %v\n", err)
	} else if ok {
		fmt.Fprintf(w, "\t[authors]\t%s\n", strings.Join(lo.Map(names, func(n bibdoc.Name, _ int) string {
			return n.String()
		}), "; "))
	}
	if d, ok, err := e.Date(); err != nil {
		fmt.Fprintf(w, "\t! %v\n", err)
	} else if ok {
		fmt.Fprintf(w, "\t[date]\t%s\n", d)
	}
	_, err := fmt.Fprintln(w)
	return err
}
