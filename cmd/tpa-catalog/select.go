package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"meertime/tpaclassifier/classifier"
	"meertime/tpaclassifier/render"
)

var (
	selRanges  []string
	selAssoc   []string
	selTypes   []string
	selTags    []string
	selFormat  string
	selOut     string
	selSummary bool
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Filter the curated table and print the summary and matching pulsars",
	Long: `Applies the same facets as the dashboard. Ranges are inclusive and given in
stored units (log10 of the rescaled value for F1, AGE, BSURF and EDOT); an empty
bound is open. Membership flags match by substring and may be repeated.

Example:
  tpa-catalog select --range DM=0:50 --range AGE=: --tag PROFILE=SP --assoc GC`,
	Args: cobra.NoArgs,
	RunE: runSelect,
}

func init() {
	f := selectCmd.Flags()
	f.StringArrayVarP(&selRanges, "range", "r", nil, "FIELD=LO:HI range constraint (repeatable)")
	f.StringSliceVar(&selAssoc, "assoc", nil, "Association values to keep")
	f.StringSliceVar(&selTypes, "type", nil, "Type values to keep")
	f.StringArrayVarP(&selTags, "tag", "t", nil, "CATEGORY=CODE tag constraint (repeatable)")
	f.StringVarP(&selFormat, "format", "f", "table", "Row output: table or csv")
	f.StringVarP(&selOut, "out", "o", "", "Write rows to this CSV file instead of stdout")
	f.BoolVar(&selSummary, "summary-only", false, "Print only the summary")
}

func runSelect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Catalogue = ""
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	svc, err := classifier.NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	facets := svc.NewFacets()
	if err := applyFacetFlags(facets, svc.Store().Primary.Fields(), selRanges, selAssoc, selTypes, selTags); err != nil {
		return err
	}
	view := svc.Recompute(facets, false)

	stdout := cmd.OutOrStdout()
	summaryOut := stdout
	if selFormat == "csv" && selOut == "" && !selSummary {
		summaryOut = cmd.ErrOrStderr()
	}
	if err := view.Summary.WriteText(summaryOut); err != nil {
		return err
	}
	if selSummary {
		return nil
	}

	table := render.Table(view.Selection.Records, svc.Store().Primary.Fields())
	switch {
	case selOut != "":
		if err := classifier.WriteTable(selOut, table); err != nil {
			return err
		}
		fmt.Fprintf(summaryOut, "%d rows written to %s\n", len(table.Rows), selOut)
		return nil
	case selFormat == "csv":
		return classifier.EncodeTable(stdout, table)
	case selFormat == "table":
		fmt.Fprintln(stdout)
		return writeAligned(stdout, table)
	default:
		return fmt.Errorf("unknown format %q", selFormat)
	}
}

// applyFacetFlags translates command-line constraints onto a facet state.
func applyFacetFlags(f *classifier.FacetState, fields, ranges, assoc, types, tags []string) error {
	known := make(map[string]bool, len(fields))
	for _, name := range fields {
		known[name] = true
	}
	for _, spec := range ranges {
		field, r, err := parseRangeFlag(spec)
		if err != nil {
			return err
		}
		if !known[field] {
			return fmt.Errorf("range %q: unknown field %s", spec, field)
		}
		f.SetRange(field, r.Lo, r.Hi)
	}
	if len(assoc) > 0 {
		f.SetMembers(classifier.FacetAssoc, assoc)
	}
	if len(types) > 0 {
		f.SetMembers(classifier.FacetType, types)
	}
	byCat := make(map[string][]string)
	for _, spec := range tags {
		cat, code, ok := strings.Cut(spec, "=")
		cat = strings.ToUpper(strings.TrimSpace(cat))
		code = strings.TrimSpace(code)
		if !ok || code == "" || !classifier.Category(cat).IsKnown() {
			return fmt.Errorf("tag %q: want CATEGORY=CODE with a known category", spec)
		}
		byCat[cat] = append(byCat[cat], code)
	}
	for cat, codes := range byCat {
		f.SetMembers(cat, codes)
	}
	return nil
}

// parseRangeFlag reads FIELD=LO:HI. An empty bound is open.
func parseRangeFlag(spec string) (string, classifier.Range, error) {
	field, bounds, ok := strings.Cut(spec, "=")
	field = strings.ToUpper(strings.TrimSpace(field))
	if !ok || field == "" {
		return "", classifier.Range{}, fmt.Errorf("range %q: want FIELD=LO:HI", spec)
	}
	loS, hiS, ok := strings.Cut(bounds, ":")
	if !ok {
		return "", classifier.Range{}, fmt.Errorf("range %q: want FIELD=LO:HI", spec)
	}
	r := classifier.FullRange()
	if s := strings.TrimSpace(loS); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", classifier.Range{}, fmt.Errorf("range %q: %w", spec, err)
		}
		r.Lo = v
	}
	if s := strings.TrimSpace(hiS); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", classifier.Range{}, fmt.Errorf("range %q: %w", spec, err)
		}
		r.Hi = v
	}
	if math.IsNaN(r.Lo) || math.IsNaN(r.Hi) {
		return "", classifier.Range{}, fmt.Errorf("range %q: NaN bound", spec)
	}
	return field, r, nil
}

func writeAligned(w io.Writer, t classifier.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
