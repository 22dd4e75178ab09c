// Command tpa-catalog builds the pulsar tables and runs the filter, history
// and classification operations of the dashboard from the shell.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meertime/tpaclassifier/classifier"
	"meertime/tpaclassifier/internal/logging"
)

var (
	configPath string
	datasetArg string
	tagsArg    string
	logArg     string
	backendArg string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "tpa-catalog",
	Short:         "Build, query and annotate the TPA pulsar tables",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (default: tpa.yaml)")
	pf.StringVarP(&datasetArg, "load", "l", "", "Curated pulsar table (CSV/TSV)")
	pf.StringVar(&tagsArg, "tags", "", "Taxonomy file")
	pf.StringVar(&logArg, "log", "", "Classification log path")
	pf.StringVar(&backendArg, "backend", "", "Classification log backend: file or sqlite")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(buildCmd, selectCmd, historyCmd, classifyCmd, logCmd)
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig() (classifier.Config, error) {
	cfg, err := classifier.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if datasetArg != "" {
		cfg.Dataset = datasetArg
	}
	if tagsArg != "" {
		cfg.Taxonomy = tagsArg
	}
	if backendArg != "" {
		cfg.Log.Backend = backendArg
		if logArg == "" {
			cfg.Log.Path = ""
		}
	}
	if logArg != "" {
		cfg.Log.Path = logArg
	}
	if verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	} else {
		cfg.Logging.Level = "warn"
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func newLogger(cfg classifier.Config) *zap.Logger {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// loadTaxonomy falls back to the built-in tags when the file is absent.
func loadTaxonomy(cfg classifier.Config, logger *zap.Logger) (*classifier.Taxonomy, error) {
	tax, err := classifier.LoadTaxonomy(cfg.Taxonomy)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("taxonomy file not found, using built-in tags", zap.String("path", cfg.Taxonomy))
		return classifier.DefaultTaxonomy(), nil
	}
	return tax, err
}

// openLogService wires the recorder without loading the pulsar tables.
func openLogService(cfg classifier.Config, logger *zap.Logger) (*classifier.Service, error) {
	tax, err := loadTaxonomy(cfg, logger)
	if err != nil {
		return nil, err
	}
	rec, err := classifier.OpenRecorder(cfg.Log, tax)
	if err != nil {
		return nil, err
	}
	return classifier.NewServiceFrom(classifier.Store{}, tax, rec, logger), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, classifier.Status(err))
		os.Exit(1)
	}
}
