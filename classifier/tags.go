package classifier

import (
	"sort"
	"strings"
)

const (
	segmentSep  = ";"
	categorySep = ":"
	valueSep    = "+"
)

// Classification maps categories to the tag codes assigned to a record.
type Classification map[Category][]string

// Empty reports whether no category carries a value.
func (c Classification) Empty() bool {
	for _, vals := range c {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c Classification) Clone() Classification {
	out := make(Classification, len(c))
	for k, v := range c {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ParseClassification decodes a tag string such as "PROFILE:GAU+DP;TIME:STAB".
// The empty string and "Unclassified" decode to an empty classification.
// Unknown categories are skipped; a segment without ':' is a *MalformedTagError.
// Categories with no codes never appear as keys in the result.
func ParseClassification(s string) (Classification, error) {
	out := Classification{}
	s = strings.TrimSpace(s)
	if s == "" || s == SentinelUnclassified {
		return out, nil
	}
	for _, seg := range strings.Split(s, segmentSep) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		name, rest, ok := strings.Cut(seg, categorySep)
		if !ok {
			return nil, &MalformedTagError{Input: s, Segment: seg}
		}
		cat := Category(strings.TrimSpace(name))
		if !cat.IsKnown() {
			continue
		}
		for _, v := range strings.Split(rest, valueSep) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			out[cat] = append(out[cat], v)
		}
	}
	return out, nil
}

// EncodeClassification is the inverse of ParseClassification up to empty
// categories: those are omitted, so {PROFILE:[GAU], TIME:[]} decodes back as
// {PROFILE:[GAU]}. Categories are written in canonical order; an empty
// classification encodes to "Unclassified".
func EncodeClassification(c Classification) string {
	parts := make([]string, 0, len(Categories))
	for _, cat := range Categories {
		vals := c[cat]
		if len(vals) == 0 {
			continue
		}
		parts = append(parts, string(cat)+categorySep+strings.Join(vals, valueSep))
	}
	if len(parts) == 0 {
		return SentinelUnclassified
	}
	return strings.Join(parts, segmentSep)
}

// ExtractUsedTags collects, per category, the sorted set of codes used by the
// classified records. Malformed tag strings are reported per record and skipped.
func ExtractUsedTags(records []Record) (map[Category][]string, []error) {
	sets := make(map[Category]map[string]struct{})
	var errs []error
	for _, rec := range records {
		if !rec.Classified() {
			continue
		}
		c, err := ParseClassification(rec.Category)
		if err != nil {
			if mt, ok := err.(*MalformedTagError); ok {
				mt.Record = rec.JName
			}
			errs = append(errs, err)
			continue
		}
		for cat, vals := range c {
			set, ok := sets[cat]
			if !ok {
				set = make(map[string]struct{})
				sets[cat] = set
			}
			for _, v := range vals {
				set[v] = struct{}{}
			}
		}
	}
	out := make(map[Category][]string, len(sets))
	for cat, set := range sets {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		out[cat] = vals
	}
	return out, errs
}
