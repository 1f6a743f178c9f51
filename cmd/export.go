package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drgo/bibdoc"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Convert a bibliography to BibTeX, hayagriva YAML or Typst",
	Long: `Convert a bibliography. bibtex writes the entries back, optionally with
inheritance applied (--resolve) and regenerated keys (--rekey); yaml writes a
hayagriva bibliography; typ writes one Typst file per entry type into the
directory given by --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		resolve, _ := cmd.Flags().GetBool("resolve")
		rekey, _ := cmd.Flags().GetBool("rekey")
		sortBy, _ := cmd.Flags().GetString("sort")

		bib, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}
		entries := bib.Entries()
		if sortBy != "" {
			if err := bibdoc.SortEntries(entries, sortBy); err != nil {
				return err
			}
		}
		if rekey {
			entries = bibdoc.FixKeys(entries, true)
		}

		if format == "typ" {
			if output == "" {
				return fmt.Errorf("--output directory is required for typ")
			}
			if err := os.MkdirAll(output, 0o750); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			return bibdoc.ExportTyp(entries, output)
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
		switch format {
		case "bibtex":
			return bibdoc.WriteBibTeX(w, entries, resolve)
		case "yaml":
			return bibdoc.WriteYAML(w, entries)
		default:
			return fmt.Errorf("unknown format %q: use bibtex, yaml or typ", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	f := exportCmd.Flags()
	f.String("format", "bibtex", "output format: bibtex, yaml or typ")
	f.StringP("output", "o", "", "output file (directory for typ); stdout if empty")
	f.Bool("resolve", false, "bibtex: write effective fields and drop crossref/xdata")
	f.Bool("rekey", false, "replace citation keys with generated ones")
	f.String("sort", "", `sort order, e.g. "type,-year"`)
}
