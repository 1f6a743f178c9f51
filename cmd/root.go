package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/drgo/bibdoc"
	"github.com/drgo/bibdoc/internal/config"
	"github.com/drgo/bibdoc/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bibdoc",
	Short: "Parse, check, query and convert BibTeX bibliographies",
	Long: `bibdoc reads BibTeX and BibLaTeX files, resolves @string macros and
crossref/xdata inheritance, and converts names and dates on demand.

Configuration is read from bibdoc.yaml in the current directory or in
$HOME/.config/bibdoc, and from BIBDOC_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default bibdoc.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	bindFlagToViper("log.level", pf.Lookup("log-level"))
	bindFlagToViper("log.format", pf.Lookup("log-format"))
}

func setup(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	var err error
	if cfg, err = config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if log, err = logger.New(cfg.Log, cmd.ErrOrStderr()); err != nil {
		return err
	}
	log.WithField("config", viper.ConfigFileUsed()).Debug("configuration loaded")
	return nil
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// parseFile parses path, or standard input when path is "-".
func parseFile(cmd *cobra.Command, path string) (*bibdoc.Bibliography, error) {
	opts := bibdoc.Options{Logger: log.WithField("file", path), Macros: cfg.Parse.Macros}
	if path == "-" {
		return bibdoc.ParseReader(cmd.InOrStdin(), opts)
	}
	return bibdoc.ParseFile(path, opts)
}

// createOutput opens path for writing, or returns the command's output for
// "" and "-".
func createOutput(cmd *cobra.Command, path string) (w io.Writer, closeFn func() error, err error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
