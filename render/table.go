package render

import (
	"strconv"

	"meertime/tpaclassifier/classifier"
)

var textColumns = []string{"JNAME", "BNAME", "ASSOC", "TYPE", "CATEGORY"}

// Columns returns the table header for a selection with the given numeric fields.
func Columns(fields []string) []string {
	out := append([]string(nil), textColumns...)
	return append(out, fields...)
}

// Rows formats records for a table, numeric cells in physical units.
func Rows(records []classifier.Record, fields []string) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		row := []string{r.JName, r.BName, r.Assoc, r.Type, r.Category}
		for _, f := range fields {
			row = append(row, formatValue(r.Physical(f)))
		}
		out[i] = row
	}
	return out
}

// Table converts records to a writable table.
func Table(records []classifier.Record, fields []string) classifier.Table {
	return classifier.Table{Header: Columns(fields), Rows: Rows(records, fields)}
}

func formatValue(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
