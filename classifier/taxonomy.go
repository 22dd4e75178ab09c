package classifier

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Taxonomy is the ordered set of allowed tags per category, with a
// bidirectional label/code table.
type Taxonomy struct {
	order []Category
	tags  map[Category][]TagCode
}

// LoadTaxonomy reads a taxonomy file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy: %w", err)
	}
	defer f.Close()
	t, err := ParseTaxonomy(f)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return t, nil
}

// ParseTaxonomy reads "#CATEGORY" header lines, each followed by the tags of
// that category. A tag line is either "Label" or "Label = CODE"; without an
// explicit code the built-in table is consulted, then the label itself is
// upper-cased and stripped of non-alphanumerics. "Unclassified" lines are
// implied and skipped.
func ParseTaxonomy(r io.Reader) (*Taxonomy, error) {
	t := &Taxonomy{tags: make(map[Category][]TagCode)}
	var current Category
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			name := strings.ToUpper(strings.TrimSpace(strings.TrimLeft(text, "#")))
			if name == "" {
				return nil, fmt.Errorf("line %d: empty category header", line)
			}
			current = Category(name)
			if _, seen := t.tags[current]; !seen {
				t.order = append(t.order, current)
				t.tags[current] = nil
			}
			continue
		}
		if current == "" {
			return nil, fmt.Errorf("line %d: tag %q before any category header", line, text)
		}
		label, code, explicit := strings.Cut(text, "=")
		label = NormalizeText(label)
		code = strings.TrimSpace(code)
		if label == SentinelUnclassified {
			continue
		}
		if !explicit || code == "" {
			code = deriveCode(current, label)
		}
		if err := checkCode(code); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if t.hasCode(current, code) {
			continue
		}
		t.tags[current] = append(t.tags[current], TagCode{Label: label, Code: code})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// DefaultTaxonomy builds a taxonomy from the built-in label/code table.
func DefaultTaxonomy() *Taxonomy {
	t := &Taxonomy{tags: make(map[Category][]TagCode)}
	table := DefaultTagCodes()
	for _, cat := range Categories {
		t.order = append(t.order, cat)
		t.tags[cat] = append([]TagCode(nil), table[cat]...)
	}
	return t
}

func deriveCode(cat Category, label string) string {
	if code, ok := defaultCode(cat, label); ok {
		return code
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, label)
}

func checkCode(code string) error {
	if code == "" {
		return fmt.Errorf("empty tag code")
	}
	if strings.ContainsAny(code, segmentSep+categorySep+valueSep+", \t") {
		return fmt.Errorf("tag code %q contains a reserved character", code)
	}
	return nil
}

// Categories returns the categories in file order.
func (t *Taxonomy) Categories() []Category {
	if t == nil {
		return nil
	}
	return append([]Category(nil), t.order...)
}

// Tags returns the tags of a category in file order.
func (t *Taxonomy) Tags(c Category) []TagCode {
	if t == nil {
		return nil
	}
	return append([]TagCode(nil), t.tags[c]...)
}

// Labels returns the display labels of a category in file order.
func (t *Taxonomy) Labels(c Category) []string {
	tags := t.Tags(c)
	out := make([]string, len(tags))
	for i, tc := range tags {
		out[i] = tc.Label
	}
	return out
}

// Contains reports whether code is an allowed tag of category c.
func (t *Taxonomy) Contains(c Category, code string) bool {
	return t != nil && t.hasCode(c, code)
}

func (t *Taxonomy) hasCode(c Category, code string) bool {
	for _, tc := range t.tags[c] {
		if tc.Code == code {
			return true
		}
	}
	return false
}

// Code maps a label to its code within a category.
func (t *Taxonomy) Code(c Category, label string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, tc := range t.tags[c] {
		if tc.Label == label {
			return tc.Code, true
		}
	}
	return "", false
}

// Label maps a code to its label within a category.
func (t *Taxonomy) Label(c Category, code string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, tc := range t.tags[c] {
		if tc.Code == code {
			return tc.Label, true
		}
	}
	return "", false
}

// Encode converts per-category labels into a classification of codes.
// Unknown labels are a *ValidationError.
func (t *Taxonomy) Encode(labels map[Category][]string) (Classification, error) {
	out := Classification{}
	for _, cat := range Categories {
		for _, label := range labels[cat] {
			if label == SentinelUnclassified {
				continue
			}
			code, ok := t.Code(cat, label)
			if !ok {
				return nil, &ValidationError{Field: "tags", Reason: fmt.Sprintf("%s is not a %s tag", label, cat)}
			}
			out[cat] = append(out[cat], code)
		}
	}
	return out, nil
}

// Validate checks every code of c against the taxonomy.
func (t *Taxonomy) Validate(c Classification) error {
	for _, cat := range Categories {
		for _, code := range c[cat] {
			if !t.Contains(cat, code) {
				return &ValidationError{Field: "tags", Reason: fmt.Sprintf("%s is not in the %s taxonomy", code, cat)}
			}
		}
	}
	return nil
}
