package classifier

import "math"

// Category names one group of the classification tag grammar.
type Category string

const (
	// CategoryProfile groups pulse-profile morphology tags.
	CategoryProfile Category = "PROFILE"
	// CategoryPolarization groups polarisation tags.
	CategoryPolarization Category = "POLARIZATION"
	// CategoryFrequency groups frequency-evolution tags.
	CategoryFrequency Category = "FREQUENCY"
	// CategoryTime groups time-variability tags.
	CategoryTime Category = "TIME"
	// CategoryObservation groups observation-quality tags.
	CategoryObservation Category = "OBSERVATION"
)

// Categories lists the known categories in canonical encoding order.
var Categories = []Category{
	CategoryProfile,
	CategoryPolarization,
	CategoryFrequency,
	CategoryTime,
	CategoryObservation,
}

// IsKnown reports whether c is one of the grammar categories.
func (c Category) IsKnown() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

const (
	// SentinelNA marks an absent string value and an unconstrained association/type facet.
	SentinelNA = "NA"
	// SentinelUnclassified marks an absent classification and an unconstrained tag facet.
	SentinelUnclassified = "Unclassified"
)

// Origin tells which dataset a record was loaded from.
type Origin string

const (
	OriginPrimary   Origin = "primary"
	OriginCatalogue Origin = "catalogue"
)

// Record is one pulsar with its normalised attributes. Values hold the stored
// (rescaled and/or log10) representation described by the field table.
// Records are shared between selections and must be treated as read-only.
type Record struct {
	JName    string
	BName    string
	RAJ      string
	DECJ     string
	Assoc    string
	Type     string
	BinComp  string
	Category string
	Comments string

	Values map[string]float64
	Signs  map[string]float64

	Color string
	Alpha float64
	Size  float64

	Origin Origin
}

// Value returns the stored value of a numeric field, 0 when the field is unknown.
func (r Record) Value(field string) float64 {
	return r.Values[field]
}

// Physical converts the stored value of field back to physical units. Signed
// fields without a recorded sign take their conventional negative sign.
func (r Record) Physical(field string) float64 {
	return LookupField(field).Inverse(r.Values[field], r.Signs[field])
}

// Classified reports whether the record carries any classification tags.
func (r Record) Classified() bool {
	return r.Category != "" && r.Category != SentinelUnclassified
}

// Range is an inclusive numeric interval.
type Range struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Contains reports whether v lies within [Lo, Hi].
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

// Valid reports whether both bounds are numbers.
func (r Range) Valid() bool {
	return !math.IsNaN(r.Lo) && !math.IsNaN(r.Hi)
}

// Intersect returns the overlap of r and o. The result may be empty (Lo > Hi).
func (r Range) Intersect(o Range) Range {
	return Range{Lo: math.Max(r.Lo, o.Lo), Hi: math.Min(r.Hi, o.Hi)}
}

// FullRange is the unconstrained interval, including infinities.
func FullRange() Range {
	return Range{Lo: math.Inf(-1), Hi: math.Inf(1)}
}
