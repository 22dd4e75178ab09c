package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meertime/tpaclassifier/classifier"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Classification log maintenance",
}

var importDB string

var logImportCmd = &cobra.Command{
	Use:   "import FLATFILE",
	Short: "Copy a flat classification log into the SQLite backend",
	Long: `Reads a "key,user,comment,tags" log and inserts every entry that passes
validation into the SQLite database. Rejected lines are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogImport,
}

func init() {
	logImportCmd.Flags().StringVar(&importDB, "db", "", "SQLite database (default: config log path when the backend is sqlite, else classifications.db)")
	logCmd.AddCommand(logImportCmd)
}

func runLogImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	db := importDB
	if db == "" {
		db = "classifications.db"
		if cfg.Log.Backend == classifier.BackendSQLite {
			db = cfg.Log.Path
		}
	}
	tax, err := loadTaxonomy(cfg, logger)
	if err != nil {
		return err
	}

	entries, err := classifier.NewFileRecorder(args[0], nil).Entries()
	if err != nil {
		return err
	}
	rec, err := classifier.OpenSQLiteRecorder(db, tax)
	if err != nil {
		return err
	}
	defer rec.Close()

	n, errs := rec.Import(entries)
	out := cmd.OutOrStdout()
	for _, e := range errs {
		logger.Warn("import skipped entry", zap.Error(e))
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %v\n", e)
	}
	total, err := rec.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d of %d entries into %s (%d total)\n", n, len(entries), db, total)
	return nil
}
