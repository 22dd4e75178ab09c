package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meertime/tpaclassifier/classifier"
)

var (
	buildExport    string
	buildNames     string
	buildCustom    string
	buildOut       string
	buildCatalogue string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Split a catalogue export into the curated table and the reference catalogue",
	Long: `Reads a pulsar catalogue export, keeps the pulsars named in --names as the
curated table (with externally measured columns from --custom merged on JNAME)
and writes the remaining pulsars as the reference catalogue.

Example:
  tpa-catalog build --export psrcat.csv --names tpa_names.txt --custom custom.txt`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&buildExport, "export", "", "Catalogue export table (CSV/TSV)")
	f.StringVar(&buildNames, "names", "", "Curated JNAME list, one per line")
	f.StringVar(&buildCustom, "custom", "", "List of \"<name> <path>\" custom value files")
	f.StringVar(&buildOut, "out", "tpa_data.csv", "Curated table output")
	f.StringVar(&buildCatalogue, "catalogue-out", "psrcat_data.csv", "Reference catalogue output")
	_ = buildCmd.MarkFlagRequired("export")
	_ = buildCmd.MarkFlagRequired("names")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	export, err := classifier.ReadTable(buildExport)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	names, err := classifier.ParseNameList(buildNames)
	if err != nil {
		return err
	}
	var custom []classifier.CustomColumn
	if buildCustom != "" {
		sources, err := classifier.ParseCustomList(buildCustom)
		if err != nil {
			return err
		}
		custom, err = classifier.LoadCustomColumns(sources)
		if err != nil {
			return err
		}
	}

	curated, full, err := classifier.BuildCatalog(export, names, custom)
	if err != nil {
		return err
	}
	if err := classifier.WriteTable(buildOut, curated); err != nil {
		return err
	}
	if err := classifier.WriteTable(buildCatalogue, full); err != nil {
		return err
	}
	logger.Info("catalog built",
		zap.Int("curated", len(curated.Rows)),
		zap.Int("catalogue", len(full.Rows)),
		zap.Int("custom", len(custom)))
	fmt.Fprintf(cmd.OutOrStdout(), "curated: %d pulsars -> %s\ncatalogue: %d pulsars -> %s\n",
		len(curated.Rows), buildOut, len(full.Rows), buildCatalogue)
	return nil
}
