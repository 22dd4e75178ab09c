package classifier

import (
	"math"
	"strings"
)

// RequiredColumns must be present in every source table.
var RequiredColumns = []string{
	"JNAME", "BNAME", "RAJ", "DECJ", "F0", "F1", "P0", "P1", "DM", "RM", "DIST",
	"ASSOC", "PB", "BINCOMP", "AGE", "BSURF", "EDOT", "NGLT",
}

// OptionalColumns are read when present and filled with sentinels otherwise.
var OptionalColumns = []string{"TYPE", "CATEGORY", "COMMENTS"}

type columnIndex map[string]int

func indexColumns(header []string) columnIndex {
	cols := make(columnIndex, len(header))
	for i, h := range header {
		h = cleanCell(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

// Dataset is an immutable, normalised table of records.
type Dataset struct {
	name    string
	origin  Origin
	fields  []string
	records []Record
	byName  map[string]int
}

// BuildDataset validates a raw table and runs the normalisation pass once.
func BuildDataset(name string, origin Origin, table Table) (*Dataset, error) {
	cols := indexColumns(table.Header)
	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &DataLoadError{Path: name, Missing: missing}
	}

	numeric := make([]string, 0, len(numericFields)+4)
	for _, f := range numericFields {
		if _, ok := cols[f.Name]; ok {
			numeric = append(numeric, f.Name)
		}
	}
	for _, h := range table.Header {
		h = cleanCell(h)
		if IsCustomColumn(h) {
			numeric = append(numeric, h)
		}
	}
	numeric = orderFields(numeric)

	d := &Dataset{
		name:    name,
		origin:  origin,
		fields:  numeric,
		records: make([]Record, 0, len(table.Rows)),
		byName:  make(map[string]int, len(table.Rows)),
	}
	for _, row := range table.Rows {
		rec := normalizeRow(cols, row, numeric, origin)
		if _, dup := d.byName[rec.JName]; !dup {
			d.byName[rec.JName] = len(d.records)
		}
		d.records = append(d.records, rec)
	}
	return d, nil
}

// Name returns the source name the dataset was built from.
func (d *Dataset) Name() string { return d.name }

// Origin returns which role the dataset plays.
func (d *Dataset) Origin() Origin { return d.origin }

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Fields returns the numeric field names present, in display order.
func (d *Dataset) Fields() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.fields...)
}

// Records returns the records in source order. The slice is a copy; the
// records themselves are shared and read-only.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return append([]Record(nil), d.records...)
}

// Lookup returns the first record with the given JNAME.
func (d *Dataset) Lookup(jname string) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	idx, ok := d.byName[strings.TrimSpace(jname)]
	if !ok {
		return Record{}, false
	}
	return d.records[idx], true
}

// Extent returns the full min/max of every numeric field.
func (d *Dataset) Extent() map[string]Range {
	return fieldBounds(d.Records(), d.Fields())
}

// Store holds the curated dataset and the optional reference catalogue.
type Store struct {
	Primary   *Dataset
	Catalogue *Dataset
}

func fieldBounds(records []Record, fields []string) map[string]Range {
	out := make(map[string]Range, len(fields))
	for _, f := range fields {
		r := Range{Lo: math.NaN(), Hi: math.NaN()}
		for _, rec := range records {
			v, ok := rec.Values[f]
			if !ok || math.IsNaN(v) {
				continue
			}
			if math.IsNaN(r.Lo) || v < r.Lo {
				r.Lo = v
			}
			if math.IsNaN(r.Hi) || v > r.Hi {
				r.Hi = v
			}
		}
		out[f] = r
	}
	return out
}
