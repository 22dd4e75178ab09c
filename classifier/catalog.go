package classifier

import (
	"fmt"
	"strings"
)

// CatalogColumns is the fixed column order of curated and catalogue tables.
var CatalogColumns = []string{
	"JNAME", "BNAME", "RAJ", "RAJ_ERR", "DECJ", "DECJ_ERR", "F0", "F0_ERR", "F1", "F1_ERR",
	"P0", "P0_ERR", "P1", "P1_ERR", "DM", "DM_ERR", "RM", "RM_ERR", "DIST", "ASSOC",
	"TYPE", "PB", "PB_ERR", "BINCOMP", "AGE", "BSURF", "EDOT", "NGLT",
}

// CustomColumn is one merged external measurement column.
type CustomColumn struct {
	Name   string
	Values map[string]string
	Order  []string
}

// BuildCatalog splits a catalogue export into the curated table (the pulsars
// in curated, plus the custom columns outer-joined on JNAME) and the full
// reference catalogue with curated pulsars removed. Both tables use
// CatalogColumns order; columns absent from the export are left empty.
func BuildCatalog(export Table, curated []string, custom []CustomColumn) (Table, Table, error) {
	jcol := export.Column("JNAME")
	if jcol < 0 {
		return Table{}, Table{}, &DataLoadError{Path: "catalogue export", Missing: []string{"JNAME"}}
	}
	want := make(map[string]struct{}, len(curated))
	for _, name := range curated {
		want[strings.TrimSpace(name)] = struct{}{}
	}

	srcIdx := make([]int, len(CatalogColumns))
	for i, c := range CatalogColumns {
		srcIdx[i] = export.Column(c)
	}
	project := func(row []string) []string {
		out := make([]string, len(CatalogColumns))
		for i, idx := range srcIdx {
			if idx >= 0 && idx < len(row) {
				out[i] = cleanCell(row[idx])
			}
		}
		return out
	}

	full := Table{Header: append([]string(nil), CatalogColumns...)}
	var curatedRows [][]string
	found := make(map[string]int)
	for _, row := range export.Rows {
		if jcol >= len(row) {
			continue
		}
		name := cleanCell(row[jcol])
		if _, ok := want[name]; ok {
			if _, dup := found[name]; dup {
				continue
			}
			found[name] = len(curatedRows)
			curatedRows = append(curatedRows, project(row))
			continue
		}
		full.Rows = append(full.Rows, project(row))
	}

	cur := Table{Header: append([]string(nil), CatalogColumns...), Rows: curatedRows}
	for _, cc := range custom {
		if cur.Column(cc.Name) >= 0 {
			return Table{}, Table{}, fmt.Errorf("duplicate custom column %s", cc.Name)
		}
		cur.Header = append(cur.Header, cc.Name)
		width := len(cur.Header)
		for i := range cur.Rows {
			name := cur.Rows[i][0]
			cur.Rows[i] = append(cur.Rows[i], cc.Values[name])
		}
		for _, name := range cc.Order {
			if _, ok := found[name]; ok {
				continue
			}
			row := make([]string, width)
			row[0] = name
			row[width-1] = cc.Values[name]
			found[name] = len(cur.Rows)
			cur.Rows = append(cur.Rows, row)
		}
		for i := range cur.Rows {
			for len(cur.Rows[i]) < width {
				cur.Rows[i] = append(cur.Rows[i], "")
			}
		}
	}
	return cur, full, nil
}

// LoadCustomColumns reads every source of a custom list.
func LoadCustomColumns(sources []CustomSource) ([]CustomColumn, error) {
	out := make([]CustomColumn, 0, len(sources))
	for _, src := range sources {
		values, order, err := ReadCustomValues(src.Path)
		if err != nil {
			return nil, fmt.Errorf("custom column %s: %w", src.Column(), err)
		}
		out = append(out, CustomColumn{Name: src.Column(), Values: values, Order: order})
	}
	return out, nil
}
