package classifier

import (
	"math"
	"sort"
	"strings"
)

// Facet names of the membership facets that are not tag categories.
const (
	FacetAssoc = "ASSOC"
	FacetType  = "TYPE"
)

// Constraint is one predicate of a filter.
type Constraint interface {
	Facet() string
	Match(r *Record) bool
}

// Filter supplies the constraints a selection must satisfy, combined with AND.
type Filter interface {
	Constraints() []Constraint
}

type allOf []Filter

func (a allOf) Constraints() []Constraint {
	var out []Constraint
	for _, f := range a {
		if f == nil {
			continue
		}
		out = append(out, f.Constraints()...)
	}
	return out
}

// AllOf applies every constraint of every filter.
func AllOf(filters ...Filter) Filter {
	return allOf(filters)
}

type rangeConstraint struct {
	field string
	rng   Range
}

func (c rangeConstraint) Facet() string { return c.field }

func (c rangeConstraint) Match(r *Record) bool {
	v, ok := r.Values[c.field]
	if !ok {
		return false
	}
	return c.rng.Contains(v)
}

type memberConstraint struct {
	facet  string
	values []string
	field  func(*Record) string
}

func (c memberConstraint) Facet() string { return c.facet }

// Match is an unanchored substring test against any selected value.
func (c memberConstraint) Match(r *Record) bool {
	s := c.field(r)
	for _, v := range c.values {
		if strings.Contains(s, v) {
			return true
		}
	}
	return false
}

// FacetState is the current value of every filter control. It is owned by
// one consumer and read fresh on every recompute.
type FacetState struct {
	Ranges  map[string]Range
	Members map[string][]string
}

// NewFacetState initialises every facet to the full extent of d with
// sentinel-only selections.
func NewFacetState(d *Dataset) *FacetState {
	f := &FacetState{}
	f.Reset(d)
	return f
}

// Reset restores the full extent of d.
func (f *FacetState) Reset(d *Dataset) {
	f.Ranges = make(map[string]Range)
	for field, r := range d.Extent() {
		if !r.Valid() {
			r = FullRange()
		}
		f.Ranges[field] = r
	}
	f.Members = map[string][]string{
		FacetAssoc: {SentinelNA},
		FacetType:  {SentinelNA},
	}
	for _, cat := range Categories {
		f.Members[string(cat)] = []string{SentinelUnclassified}
	}
}

// Clone returns an independent copy.
func (f *FacetState) Clone() *FacetState {
	out := &FacetState{
		Ranges:  make(map[string]Range, len(f.Ranges)),
		Members: make(map[string][]string, len(f.Members)),
	}
	for k, v := range f.Ranges {
		out.Ranges[k] = v
	}
	for k, v := range f.Members {
		out.Members[k] = append([]string(nil), v...)
	}
	return out
}

// SetRange sets the inclusive bounds of a numeric facet. Swapped bounds are reordered.
func (f *FacetState) SetRange(field string, lo, hi float64) {
	if f.Ranges == nil {
		f.Ranges = make(map[string]Range)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	f.Ranges[field] = Range{Lo: lo, Hi: hi}
}

// SetMembers replaces the selection of a membership facet.
func (f *FacetState) SetMembers(facet string, values []string) {
	if f.Members == nil {
		f.Members = make(map[string][]string)
	}
	f.Members[facet] = append([]string(nil), values...)
}

// Sentinel returns the no-constraint value of a membership facet.
func Sentinel(facet string) string {
	if Category(facet).IsKnown() {
		return SentinelUnclassified
	}
	return SentinelNA
}

func facetField(facet string) func(*Record) string {
	switch {
	case facet == FacetAssoc:
		return func(r *Record) string { return r.Assoc }
	case facet == FacetType:
		return func(r *Record) string { return r.Type }
	case Category(facet).IsKnown():
		return func(r *Record) string { return r.Category }
	default:
		return nil
	}
}

// unconstrained reports whether a selection is sentinel-only or empty.
func unconstrained(values []string, sentinel string) bool {
	return len(values) == 0 || (len(values) == 1 && values[0] == sentinel)
}

// Constraints compiles the state into predicates, in a stable order.
func (f *FacetState) Constraints() []Constraint {
	fields := make([]string, 0, len(f.Ranges))
	for k := range f.Ranges {
		fields = append(fields, k)
	}
	fields = orderFields(fields)
	out := make([]Constraint, 0, len(fields)+len(f.Members))
	for _, field := range fields {
		r := f.Ranges[field]
		if math.IsInf(r.Lo, -1) && math.IsInf(r.Hi, 1) {
			continue
		}
		out = append(out, rangeConstraint{field: field, rng: r})
	}
	facets := make([]string, 0, len(f.Members))
	for k := range f.Members {
		facets = append(facets, k)
	}
	sort.Strings(facets)
	for _, facet := range facets {
		values := f.Members[facet]
		if unconstrained(values, Sentinel(facet)) {
			continue
		}
		field := facetField(facet)
		if field == nil {
			continue
		}
		out = append(out, memberConstraint{facet: facet, values: append([]string(nil), values...), field: field})
	}
	return out
}
