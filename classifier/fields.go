package classifier

import (
	"math"
	"sort"
	"strings"
)

// CustomSuffix marks externally measured columns merged into the curated table.
const CustomSuffix = "_MK"

// FieldSpec describes how a numeric column is stored.
//
// Log fields hold log10(|raw| / Scale); signed fields keep the sign of the raw
// value in Record.Signs. Other fields hold raw / Scale.
type FieldSpec struct {
	Name    string
	Title   string
	Unit    string
	Scale   float64
	Log     bool
	Signed  bool
	Display string // unit suffix used by range read-outs
	Custom  bool
}

var numericFields = []FieldSpec{
	{Name: "F0", Title: "Spin frequency", Unit: "Hz", Scale: 1},
	{Name: "F1", Title: "Spin-frequency derivative", Unit: "Hz/s", Scale: 1e-13, Log: true, Signed: true, Display: "x 1e-13"},
	{Name: "P0", Title: "Period", Unit: "s", Scale: 1},
	{Name: "P1", Title: "Period derivative", Unit: "s/s", Scale: 1},
	{Name: "DM", Title: "Dispersion measure", Unit: "pc cm^-3", Scale: 1},
	{Name: "RM", Title: "Rotation measure", Unit: "rad m^-2", Scale: 1},
	{Name: "DIST", Title: "Distance", Unit: "kpc", Scale: 1},
	{Name: "PB", Title: "Orbital period", Unit: "d", Scale: 1},
	{Name: "AGE", Title: "Characteristic age", Unit: "yr", Scale: 1e3, Log: true, Display: "Kyr"},
	{Name: "BSURF", Title: "Surface magnetic field", Unit: "G", Scale: 1e10, Log: true, Display: "x 1e10"},
	{Name: "EDOT", Title: "Spin-down energy loss", Unit: "erg/s", Scale: 1e30, Log: true, Display: "x 1e30"},
	{Name: "NGLT", Title: "Glitch count", Unit: "", Scale: 1},
}

// NumericFields returns the built-in numeric field table in display order.
func NumericFields() []FieldSpec {
	out := make([]FieldSpec, len(numericFields))
	copy(out, numericFields)
	return out
}

// LookupField returns the spec for name. Unknown names (custom columns) are
// stored untransformed.
func LookupField(name string) FieldSpec {
	for _, f := range numericFields {
		if f.Name == name {
			return f
		}
	}
	return FieldSpec{Name: name, Title: name, Scale: 1, Custom: IsCustomColumn(name)}
}

// IsCustomColumn reports whether a header names a merged custom measurement.
func IsCustomColumn(name string) bool {
	return strings.HasSuffix(name, CustomSuffix) && len(name) > len(CustomSuffix)
}

// Forward converts a raw measurement into its stored representation and the
// sign to keep alongside it.
func (f FieldSpec) Forward(raw float64) (stored, sign float64) {
	sign = 1
	scale := f.scale()
	if f.Signed && raw < 0 {
		sign = -1
	}
	if f.Log {
		return math.Log10(math.Abs(raw / scale)), sign
	}
	return raw / scale, sign
}

// Inverse converts a stored value back to physical units.
func (f FieldSpec) Inverse(stored, sign float64) float64 {
	v := stored
	if f.Log {
		v = math.Pow(10, stored)
	}
	v *= f.scale()
	if f.Signed {
		if sign == 0 {
			sign = -1
		}
		v *= sign
	}
	return v
}

// DisplayValue converts a stored value to the rescaled unit used by the range
// read-outs, e.g. "x 1e10" for BSURF. Signed fields use their conventional sign.
func (f FieldSpec) DisplayValue(stored float64) float64 {
	v := stored
	if f.Log {
		v = math.Pow(10, stored)
	}
	if f.Signed {
		v = -v
	}
	return v
}

func (f FieldSpec) scale() float64 {
	if f.Scale == 0 {
		return 1
	}
	return f.Scale
}

// orderFields sorts field names with the built-in table first and custom
// columns after, alphabetically.
func orderFields(names []string) []string {
	rank := make(map[string]int, len(numericFields))
	for i, f := range numericFields {
		rank[f.Name] = i
	}
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iok := rank[out[i]]
		rj, jok := rank[out[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}
