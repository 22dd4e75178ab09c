package classifier

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FieldStats is the physical-unit extent of one numeric field.
type FieldStats struct {
	Field string
	Unit  string
	Min   float64
	Max   float64

	// Display bounds in the rescaled read-out unit, e.g. Kyr for AGE.
	DisplayUnit string
	DisplayMin  float64
	DisplayMax  float64
}

// Summary aggregates a selection for presentation.
type Summary struct {
	Count      int
	Classified int
	Fields     []FieldStats
}

// Summarize computes counts and the physical min/max of every numeric field.
// Each record is converted back individually, so signed fields combine
// correctly. Empty input yields a zero count and no field stats.
func Summarize(records []Record) Summary {
	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}
	for _, r := range records {
		if r.Classified() {
			s.Classified++
		}
	}
	for _, field := range fieldsOf(records) {
		spec := LookupField(field)
		st := FieldStats{
			Field:       field,
			Unit:        spec.Unit,
			Min:         math.Inf(1),
			Max:         math.Inf(-1),
			DisplayUnit: spec.Display,
			DisplayMin:  math.Inf(1),
			DisplayMax:  math.Inf(-1),
		}
		seen := false
		for _, r := range records {
			stored, ok := r.Values[field]
			if !ok || math.IsNaN(stored) {
				continue
			}
			seen = true
			p := r.Physical(field)
			st.Min = math.Min(st.Min, p)
			st.Max = math.Max(st.Max, p)
			d := spec.DisplayValue(stored)
			st.DisplayMin = math.Min(st.DisplayMin, d)
			st.DisplayMax = math.Max(st.DisplayMax, d)
		}
		if !seen {
			continue
		}
		s.Fields = append(s.Fields, st)
	}
	return s
}

// Field returns the stats of one field.
func (s Summary) Field(name string) (FieldStats, bool) {
	for _, f := range s.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldStats{}, false
}

var summaryPrinter = message.NewPrinter(language.English)

// WriteText renders the summary as aligned text lines.
func (s Summary) WriteText(w io.Writer) error {
	p := summaryPrinter
	if _, err := p.Fprintf(w, "Selected: %d (%d classified)\n", s.Count, s.Classified); err != nil {
		return err
	}
	for _, f := range s.Fields {
		line := p.Sprintf("%-8s %12.4g .. %-12.4g %s", f.Field, f.Min, f.Max, f.Unit)
		if f.DisplayUnit != "" {
			line += p.Sprintf("   [%.4g .. %.4g %s]", f.DisplayMin, f.DisplayMax, f.DisplayUnit)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// String returns the text rendering.
func (s Summary) String() string {
	var b strings.Builder
	_ = s.WriteText(&b)
	return b.String()
}
