package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"meertime/tpaclassifier/classifier"
)

var historyCmd = &cobra.Command{
	Use:   "history JNAME",
	Short: "Print the recorded classifications of a pulsar",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var (
	clsUser    string
	clsComment string
	clsTags    string
	clsLabels  []string
)

var classifyCmd = &cobra.Command{
	Use:   "classify JNAME",
	Short: "Append a classification to the log",
	Long: `Records one classification. Tags are given either encoded with --tags
(CATEGORY:CODE+CODE;CATEGORY:CODE) or one label at a time with --label.

Example:
  tpa-catalog classify J0437-4715 -u alice --label PROFILE=SinglePeak --comment "clean"`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.StringVarP(&clsUser, "user", "u", "", "Username (default: config username)")
	f.StringVar(&clsComment, "comment", "", "Free-text comment")
	f.StringVar(&clsTags, "tags", "", "Encoded classification")
	f.StringArrayVar(&clsLabels, "label", nil, "CATEGORY=Label taxonomy tag (repeatable)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()
	svc, err := openLogService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	entries, err := svc.History(args[0])
	if err != nil {
		return err
	}
	return writeHistory(cmd.OutOrStdout(), args[0], entries)
}

func writeHistory(w io.Writer, key string, entries []classifier.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "%s: no classifications\n", key)
		return err
	}
	for i, e := range entries {
		if _, err := fmt.Fprintf(w, "%d. %s  %s  %s\n", i+1, e.Username, e.Tags, e.Comment); err != nil {
			return err
		}
	}
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()
	svc, err := openLogService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	user := clsUser
	if user == "" {
		user = cfg.Username
	}
	if clsTags != "" && len(clsLabels) > 0 {
		return fmt.Errorf("use either --tags or --label, not both")
	}

	var saved classifier.Entry
	if len(clsLabels) > 0 {
		labels, err := parseLabelFlags(clsLabels)
		if err != nil {
			return err
		}
		saved, err = svc.Classify(args[0], user, clsComment, labels)
		if err != nil {
			return err
		}
	} else {
		saved, err = svc.ClassifyTags(args[0], user, clsComment, clsTags)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s,%s,%s,%s\n", saved.Key, saved.Username, saved.Comment, saved.Tags)
	return nil
}

func parseLabelFlags(specs []string) (map[classifier.Category][]string, error) {
	out := make(map[classifier.Category][]string)
	for _, spec := range specs {
		cat, label, ok := strings.Cut(spec, "=")
		c := classifier.Category(strings.ToUpper(strings.TrimSpace(cat)))
		label = strings.TrimSpace(label)
		if !ok || label == "" || !c.IsKnown() {
			return nil, fmt.Errorf("label %q: want CATEGORY=Label with a known category", spec)
		}
		out[c] = append(out[c], label)
	}
	return out, nil
}
