package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meertime/tpaclassifier/classifier"
	"meertime/tpaclassifier/internal/app"
)

var (
	configPath string
	datasetArg string
	psrcatArg  string
	tagsArg    string
	logArg     string
	backendArg string
	userArg    string
	saveConfig bool
)

var rootCmd = &cobra.Command{
	Use:   "tpaclassifier",
	Short: "Filter, plot and classify the MeerTime TPA pulsar sample",
	Long: `Opens the dashboard: numeric range sliders, association, type and tag
facets, a P-Pdot diagram of the selection, a summary of the selected ranges and
a per-pulsar classification form backed by the classification log.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "Config file (default: tpa.yaml)")
	f.StringVarP(&datasetArg, "load", "l", "", "Curated pulsar table (CSV/TSV)")
	f.StringVar(&psrcatArg, "psrcat", "", "Reference catalogue table shown by the catalogue toggle")
	f.StringVar(&tagsArg, "tags", "", "Taxonomy file (#CATEGORY headers followed by tags)")
	f.StringVar(&logArg, "log", "", "Classification log path")
	f.StringVar(&backendArg, "backend", "", "Classification log backend: file or sqlite")
	f.StringVarP(&userArg, "user", "u", "", "Default username for the classification form")
	f.BoolVar(&saveConfig, "save-config", false, "Write the effective settings back to the config file")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := classifier.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if datasetArg != "" {
		cfg.Dataset = datasetArg
	}
	if psrcatArg != "" {
		cfg.Catalogue = psrcatArg
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
	if userArg != "" {
		cfg.Username = userArg
	}
	cfg.ApplyDefaults()
	if saveConfig {
		if err := classifier.SaveConfig(configPath, cfg); err != nil {
			return err
		}
	}
	return app.Run(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
