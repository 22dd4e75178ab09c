package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var fixtureHeader = []string{
	"JNAME", "BNAME", "RAJ", "DECJ", "F0", "F1", "P0", "P1", "DM", "RM", "DIST",
	"ASSOC", "TYPE", "PB", "BINCOMP", "AGE", "BSURF", "EDOT", "NGLT", "CATEGORY", "COMMENTS",
}

// row builds one fixture row; unspecified cells are left empty.
func row(cells map[string]string) []string {
	out := make([]string, len(fixtureHeader))
	for i, h := range fixtureHeader {
		out[i] = cells[h]
	}
	return out
}

func fixtureTable(rows ...map[string]string) Table {
	t := Table{Header: append([]string(nil), fixtureHeader...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, row(r))
	}
	return t
}

func mustDataset(t *testing.T, origin Origin, rows ...map[string]string) *Dataset {
	t.Helper()
	d, err := BuildDataset("fixture", origin, fixtureTable(rows...))
	require.NoError(t, err)
	return d
}

// pulsarFixture is a small curated set with realistic catalogue values.
func pulsarFixture(t *testing.T) *Dataset {
	t.Helper()
	return mustDataset(t, OriginPrimary,
		map[string]string{
			"JNAME": "J0437-4715", "BNAME": "*", "P0": "0.005757", "P1": "5.729e-20", "F1": "-5.728e-16",
			"DM": "2.64", "ASSOC": "GC:NGC6752", "TYPE": "HE[1]", "AGE": "1.59e9", "BSURF": "5.81e8",
			"EDOT": "1.2e34", "CATEGORY": "PROFILE:MC;POLARIZATION:PA", "NGLT": "0",
		},
		map[string]string{
			"JNAME": "J0835-4510", "BNAME": "B0833-45", "P0": "0.0893", "P1": "1.25e-13", "F1": "-1.567e-11",
			"DM": "67.97", "ASSOC": "SNR:Vela", "TYPE": "HE[2]", "AGE": "1.13e4", "BSURF": "3.38e12",
			"EDOT": "6.9e36", "CATEGORY": "PROFILE:GAU+DP;TIME:GLT", "NGLT": "20",
		},
		map[string]string{
			"JNAME": "J1644-4559", "BNAME": "B1641-45", "P0": "0.455", "P1": "2.0e-14", "F1": "-9.7e-14",
			"DM": "478.8", "ASSOC": "*", "AGE": "3.59e5", "BSURF": "3.06e12",
			"EDOT": "8.4e33", "CATEGORY": "FREQUENCY:SPAN", "NGLT": "3",
		},
		map[string]string{
			"JNAME": "J1752-2806", "BNAME": "B1749-28", "P0": "0.5626", "P1": "8.13e-15", "F1": "-2.57e-14",
			"DM": "", "ASSOC": "*", "AGE": "1.1e6", "BSURF": "2.16e12", "EDOT": "1.8e33",
		},
	)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func jnames(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.JName
	}
	return out
}
