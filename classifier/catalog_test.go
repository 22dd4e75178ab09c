package classifier

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportTable() Table {
	return Table{
		Header: []string{"JNAME", "P0", "DM", "EXTRA"},
		Rows: [][]string{
			{"J0437-4715", "0.005757", "2.64", "x"},
			{"J0835-4510", "0.0893", "67.97", "y"},
			{"J1644-4559", "0.455", "478.8", "z"},
		},
	}
}

func TestBuildCatalogSplit(t *testing.T) {
	cur, full, err := BuildCatalog(exportTable(), []string{"J0835-4510", "J0437-4715"}, nil)
	require.NoError(t, err)

	assert.Equal(t, CatalogColumns, cur.Header)
	assert.Equal(t, []string{"J0437-4715", "J0835-4510"}, []string{cur.Rows[0][0], cur.Rows[1][0]})
	assert.Equal(t, "0.0893", cur.Rows[1][cur.Column("P0")])
	assert.Equal(t, "", cur.Rows[1][cur.Column("BNAME")])

	require.Len(t, full.Rows, 1)
	assert.Equal(t, "J1644-4559", full.Rows[0][0])
	assert.Equal(t, -1, full.Column("EXTRA"))
}

func TestBuildCatalogCustomOuterJoin(t *testing.T) {
	custom := []CustomColumn{
		{Name: "W50_MK", Values: map[string]string{"J0835-4510": "2.1", "J9999+9999": "7"}, Order: []string{"J0835-4510", "J9999+9999"}},
		{Name: "SNR_MK", Values: map[string]string{"J9999+9999": "40"}, Order: []string{"J9999+9999"}},
	}
	cur, _, err := BuildCatalog(exportTable(), []string{"J0835-4510"}, custom)
	require.NoError(t, err)

	wantHeader := append(append([]string(nil), CatalogColumns...), "W50_MK", "SNR_MK")
	if diff := cmp.Diff(wantHeader, cur.Header); diff != "" {
		t.Fatalf("header (-want +got):\n%s", diff)
	}
	require.Len(t, cur.Rows, 2)
	for _, r := range cur.Rows {
		assert.Len(t, r, len(wantHeader))
	}
	w, s := cur.Column("W50_MK"), cur.Column("SNR_MK")
	assert.Equal(t, "2.1", cur.Rows[0][w])
	assert.Equal(t, "", cur.Rows[0][s])
	assert.Equal(t, "J9999+9999", cur.Rows[1][0])
	assert.Equal(t, "7", cur.Rows[1][w])
	assert.Equal(t, "40", cur.Rows[1][s])

	// the curated table is a loadable dataset
	d, err := BuildDataset("curated", OriginPrimary, cur)
	require.NoError(t, err)
	r, ok := d.Lookup("J9999+9999")
	require.True(t, ok)
	assert.Equal(t, 40.0, r.Values["SNR_MK"])
}

func TestBuildCatalogDuplicateCustom(t *testing.T) {
	custom := []CustomColumn{{Name: "W50_MK"}, {Name: "W50_MK"}}
	_, _, err := BuildCatalog(exportTable(), nil, custom)
	assert.ErrorContains(t, err, "duplicate custom column")
}

func TestCustomListFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "w50.txt", "# width at 50%\nJ0835-4510 2.1\nJ0437-4715\t0.3 # ms\n\n")
	list := writeFile(t, dir, "custom.txt", "W50_meerkat w50.txt\n")
	names := writeFile(t, dir, "names.txt", "J0835-4510  # Vela\nJ0437-4715\nJ0835-4510\n")

	sources, err := ParseCustomList(list)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "W50_MK", sources[0].Column())
	assert.Equal(t, filepath.Join(dir, "w50.txt"), sources[0].Path)

	cols, err := LoadCustomColumns(sources)
	require.NoError(t, err)
	assert.Equal(t, []string{"J0835-4510", "J0437-4715"}, cols[0].Order)
	assert.Equal(t, "0.3", cols[0].Values["J0437-4715"])

	curated, err := ParseNameList(names)
	require.NoError(t, err)
	assert.Equal(t, []string{"J0835-4510", "J0437-4715"}, curated)
}

func TestWriteTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cat.csv")
	in := Table{Header: []string{"JNAME", "ASSOC"}, Rows: [][]string{{"J1", "GC:47Tuc, field"}}}
	require.NoError(t, WriteTable(path, in))
	back, err := ReadTable(path)
	require.NoError(t, err)
	if diff := cmp.Diff(in, back); diff != "" {
		t.Fatalf("table (-want +got):\n%s", diff)
	}
}

func TestParseTableEmpty(t *testing.T) {
	_, err := ParseTable(strings.NewReader(""), ',')
	assert.Error(t, err)
}
