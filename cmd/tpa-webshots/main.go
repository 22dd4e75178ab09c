// Command tpa-webshots captures the per-pulsar catalogue pages shown in the
// dashboard detail view.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meertime/tpaclassifier/classifier"
	"meertime/tpaclassifier/internal/logging"
	"meertime/tpaclassifier/webshot"
)

var (
	configPath string
	datasetArg string
	namesArg   string
	dirArg     string
	remoteURL  string
	timeout    time.Duration
	force      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tpa-webshots [JNAME...]",
	Short: "Capture catalogue pages of the curated pulsars into the webshot cache",
	Long: `Opens each pulsar's catalogue page in headless Chrome and stores a
screenshot as <dir>/<JNAME>.png. Pulsars come from the arguments, from --names,
or from the curated table. Cached pages are skipped unless --force is set.`,
	SilenceUsage: true,
	RunE:         runCapture,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "Config file (default: tpa.yaml)")
	f.StringVarP(&datasetArg, "load", "l", "", "Curated pulsar table supplying the JNAMEs")
	f.StringVar(&namesArg, "names", "", "JNAME list, one per line")
	f.StringVarP(&dirArg, "dir", "d", "", "Webshot cache directory")
	f.StringVar(&remoteURL, "remote", "", "DevTools websocket of an already running browser")
	f.DurationVar(&timeout, "timeout", 0, "Per-page timeout")
	f.BoolVar(&force, "force", false, "Recapture pages that are already cached")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// targets resolves the pulsars to capture: arguments first, then a name
// list, then the curated table.
func targets(cfg classifier.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if namesArg != "" {
		return classifier.ParseNameList(namesArg)
	}
	d, err := classifier.LoadDataset(cfg.Dataset, classifier.OriginPrimary)
	if err != nil {
		return nil, err
	}
	recs := d.Records()
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.JName)
	}
	return out, nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := classifier.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if datasetArg != "" {
		cfg.Dataset = datasetArg
	}
	if dirArg != "" {
		cfg.Webshots.Dir = dirArg
	}
	if timeout > 0 {
		cfg.Webshots.Timeout = timeout
	}
	if verbose {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	cfg.ApplyDefaults()
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	keys, err := targets(cfg, args)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no pulsars to capture")
	}

	b := webshot.NewBrowser(webshot.BrowserConfig{
		Width:     cfg.Webshots.Width,
		Height:    cfg.Webshots.Height,
		RemoteURL: remoteURL,
	})
	if err := b.Start(); err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("browser close", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &webshot.Capturer{
		Cache:   webshot.NewCache(cfg.Webshots.Dir),
		Shooter: b,
		URL:     cfg.WebshotURL,
		Timeout: cfg.Webshots.Timeout,
		Force:   force,
		Logger:  logger,
	}
	rep := c.CaptureAll(ctx, keys)
	printReport(cmd, rep)
	if len(rep.Failed) > 0 {
		return fmt.Errorf("%d of %d captures failed", len(rep.Failed), len(keys))
	}
	return nil
}

func printReport(cmd *cobra.Command, rep webshot.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "captured %d, cached %d, failed %d\n", len(rep.Captured), len(rep.Skipped), len(rep.Failed))
	failed := make([]string, 0, len(rep.Failed))
	for k := range rep.Failed {
		failed = append(failed, k)
	}
	sort.Strings(failed)
	for _, k := range failed {
		fmt.Fprintf(out, "  %s: %v\n", k, rep.Failed[k])
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
