package app

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"meertime/tpaclassifier/classifier"
)

// tagLabels maps the codes offered by a selection to display labels.
// The sentinel is not offered: an empty check group means no constraint.
func tagLabels(tax *classifier.Taxonomy, cat classifier.Category, codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == classifier.SentinelUnclassified {
			continue
		}
		out = append(out, labelFor(tax, cat, code))
	}
	return out
}

func labelFor(tax *classifier.Taxonomy, cat classifier.Category, code string) string {
	if label, ok := tax.Label(cat, code); ok {
		return label
	}
	return code
}

// tagCodes is the inverse of tagLabels. Labels without a code are used verbatim.
func tagCodes(tax *classifier.Taxonomy, cat classifier.Category, labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if code, ok := tax.Code(cat, label); ok {
			out = append(out, code)
			continue
		}
		out = append(out, label)
	}
	return out
}

// keepSelected appends selected values missing from options so a checked
// box never disappears while it is still active.
func keepSelected(options, selected []string) []string {
	out := append([]string(nil), options...)
	for _, s := range selected {
		found := false
		for _, o := range out {
			if o == s {
				found = true
				break
			}
		}
		if !found {
			out = append(out, s)
		}
	}
	return out
}

// sliderBounds makes a finite slider extent from a stored range. Infinite
// ends (log fields of missing values) are clamped to the finite part and a
// single value is widened so the slider can move.
func sliderBounds(r classifier.Range) (float64, float64, bool) {
	if !r.Valid() {
		return 0, 0, false
	}
	lo, hi := r.Lo, r.Hi
	if math.IsInf(lo, 0) && math.IsInf(hi, 0) {
		return 0, 0, false
	}
	if math.IsInf(lo, -1) {
		lo = math.Floor(hi) - 1
	}
	if math.IsInf(hi, 1) {
		hi = math.Ceil(lo) + 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5, true
	}
	return lo, hi, true
}

// sliderStep divides a range into roughly 200 steps.
func sliderStep(lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		return 1
	}
	return span / 200
}

// readout renders a stored range in the field's display unit.
func readout(field string, r classifier.Range) string {
	spec := classifier.LookupField(field)
	if !r.Valid() {
		return fmt.Sprintf("%s: n/a", field)
	}
	lo, hi := spec.DisplayValue(r.Lo), spec.DisplayValue(r.Hi)
	if lo > hi {
		lo, hi = hi, lo
	}
	unit := spec.Display
	if unit == "" {
		unit = spec.Unit
	}
	s := fmt.Sprintf("%s: %.4g .. %.4g", field, lo, hi)
	if unit != "" {
		s += " " + unit
	}
	if spec.Log {
		s += " (log)"
	}
	return s
}

// logSink collects log lines before the log pane exists and forwards them once it does.
type logSink struct {
	mu      sync.Mutex
	pending []string
	fn      func(string)
}

func (s *logSink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	s.mu.Lock()
	fn := s.fn
	if fn == nil {
		s.pending = append(s.pending, line)
		if len(s.pending) > 200 {
			s.pending = s.pending[len(s.pending)-200:]
		}
	}
	s.mu.Unlock()
	if fn != nil {
		fn(line)
	}
	return len(p), nil
}

func (s *logSink) attach(fn func(string)) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.fn = fn
	s.mu.Unlock()
	for _, line := range pending {
		fn(line)
	}
}
