package classifier

import (
	"sort"
)

// Selection is the result of one filter pass. Bounds and Options describe the
// subset, so controls can narrow to what is still reachable.
type Selection struct {
	Records []Record
	Bounds  map[string]Range
	Options map[string][]string
	Issues  []error
}

// Len returns the number of selected records.
func (s Selection) Len() int { return len(s.Records) }

// Bound returns the subset extent of a numeric field. ok is false when no
// selected record carries a number for it.
func (s Selection) Bound(field string) (Range, bool) {
	r, ok := s.Bounds[field]
	if !ok || !r.Valid() {
		return Range{}, false
	}
	return r, true
}

// Select keeps the records matching every constraint of f, in input order,
// and recomputes bounds and option lists over the result. It does not mutate
// records or f.
func Select(records []Record, f Filter) Selection {
	var constraints []Constraint
	if f != nil {
		constraints = f.Constraints()
	}
	out := make([]Record, 0, len(records))
	for i := range records {
		if matchAll(&records[i], constraints) {
			out = append(out, records[i])
		}
	}
	sel := Selection{Records: out}
	sel.Bounds = fieldBounds(out, fieldsOf(records))
	sel.Options, sel.Issues = options(out)
	return sel
}

func matchAll(r *Record, constraints []Constraint) bool {
	for _, c := range constraints {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

func fieldsOf(records []Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		for name := range r.Values {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return orderFields(names)
}

func options(records []Record) (map[string][]string, []error) {
	out := map[string][]string{
		FacetAssoc: withSentinel(SentinelNA, distinct(records, func(r Record) string { return r.Assoc })),
		FacetType:  withSentinel(SentinelNA, distinct(records, func(r Record) string { return r.Type })),
	}
	used, issues := ExtractUsedTags(records)
	for _, cat := range Categories {
		out[string(cat)] = withSentinel(SentinelUnclassified, used[cat])
	}
	return out, issues
}

func distinct(records []Record, field func(Record) string) []string {
	seen := make(map[string]struct{})
	var vals []string
	for _, r := range records {
		v := field(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}

// withSentinel puts the sentinel first and drops any other occurrence of it.
func withSentinel(sentinel string, vals []string) []string {
	out := make([]string, 0, len(vals)+1)
	out = append(out, sentinel)
	for _, v := range vals {
		if v != sentinel {
			out = append(out, v)
		}
	}
	return out
}
