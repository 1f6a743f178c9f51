package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/drgo/bibdoc/internal/store"
)

const storePathKey = "store.path"

var indexCmd = &cobra.Command{
	Use:   "index FILE...",
	Short: "Store entries, effective fields and names in a SQLite index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := viper.GetString(storePathKey)
		s, err := store.Open(ctx, path, log)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, file := range args {
			bib, err := parseFile(cmd, file)
			if err != nil {
				return err
			}
			n, err := s.SaveBibliography(ctx, bib)
			if err != nil {
				return fmt.Errorf("index %s: %w", file, err)
			}
			log.WithField("file", file).WithField("db", path).Infof("indexed %d entries", n)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [--field NAME] TEXT",
	Short: "Search the SQLite index by field text or by person name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		field, _ := cmd.Flags().GetString("field")
		byName, _ := cmd.Flags().GetBool("name")
		s, err := store.Open(ctx, viper.GetString(storePathKey), log)
		if err != nil {
			return err
		}
		defer s.Close()

		var keys []string
		if byName {
			keys, err = s.ByName(ctx, args[0])
		} else {
			keys, err = s.Search(ctx, field, args[0])
		}
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd, searchCmd)
	rootCmd.PersistentFlags().String("db", "bibdoc.db", "SQLite index path")
	bindFlagToViper(storePathKey, rootCmd.PersistentFlags().Lookup("db"))
	searchCmd.Flags().String("field", "title", "field to search")
	searchCmd.Flags().Bool("name", false, "search family names of authors, editors and translators")
}
