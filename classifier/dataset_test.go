package classifier

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDatasetMissingColumns(t *testing.T) {
	_, err := BuildDataset("bad.csv", OriginPrimary, Table{Header: []string{"JNAME", "P0"}})
	var dl *DataLoadError
	require.True(t, errors.As(err, &dl))
	assert.Contains(t, dl.Missing, "DM")
	assert.NotContains(t, dl.Missing, "TYPE")
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestBuildDatasetNormalisation(t *testing.T) {
	d := pulsarFixture(t)
	require.Equal(t, 4, d.Len())

	vela, ok := d.Lookup("J0835-4510")
	require.True(t, ok)
	assert.Equal(t, "B0833-45", vela.BName)
	assert.Equal(t, "#3498db", vela.Color)
	assert.Equal(t, 0.9, vela.Alpha)
	assert.Equal(t, 9.0, vela.Size)
	assert.InDelta(t, math.Log10(1.567e-11/1e-13), vela.Values["F1"], 1e-12)
	assert.Equal(t, -1.0, vela.Signs["F1"])
	assert.InDelta(t, math.Log10(1.13e4/1e3), vela.Values["AGE"], 1e-12)
	assert.InDelta(t, math.Log10(6.9e36/1e30), vela.Values["EDOT"], 1e-12)

	j0437, _ := d.Lookup("J0437-4715")
	assert.Equal(t, SentinelNA, j0437.BName)

	quiet, ok := d.Lookup("J1752-2806")
	require.True(t, ok)
	assert.Equal(t, SentinelUnclassified, quiet.Category)
	assert.Equal(t, SentinelNA, quiet.Comments)
	assert.Equal(t, SentinelNA, quiet.Type)
	assert.Equal(t, 0.0, quiet.Values["DM"])
	assert.Equal(t, "grey", quiet.Color)
	assert.Equal(t, 0.25, quiet.Alpha)
	assert.Equal(t, 5.0, quiet.Size)
}

func TestMissingLogFieldIsNegativeInfinity(t *testing.T) {
	d := mustDataset(t, OriginPrimary, map[string]string{"JNAME": "J1", "AGE": "NaN"})
	r, _ := d.Lookup("J1")
	assert.True(t, math.IsInf(r.Values["AGE"], -1))
	assert.True(t, math.IsInf(r.Values["BSURF"], -1))
	assert.False(t, math.IsNaN(r.Values["F1"]))
}

func TestNaNSpellingsAreMissing(t *testing.T) {
	for _, cell := range []string{"NAN", "Nan", "+NaN", "-nan"} {
		v, ok := parseNumber(cell)
		assert.False(t, ok, cell)
		assert.Equal(t, 0.0, v, cell)
	}
	d := mustDataset(t, OriginPrimary, map[string]string{"JNAME": "J1", "DM": "NAN", "AGE": "Nan"})
	r, _ := d.Lookup("J1")
	assert.Equal(t, 0.0, r.Values["DM"])
	assert.True(t, math.IsInf(r.Values["AGE"], -1))
}

func TestCatalogueStyle(t *testing.T) {
	d := mustDataset(t, OriginCatalogue, map[string]string{"JNAME": "J1", "DM": "10"})
	r, _ := d.Lookup("J1")
	assert.Equal(t, "#7f8c8d", r.Color)
	assert.Equal(t, 0.6, r.Alpha)
	assert.Equal(t, 7.0, r.Size)
	assert.Equal(t, OriginCatalogue, r.Origin)
}

func TestCustomColumns(t *testing.T) {
	tbl := fixtureTable(map[string]string{"JNAME": "J1"}, map[string]string{"JNAME": "J2"})
	tbl.Header = append(tbl.Header, "WIDTH_MK", "SNR_MK")
	tbl.Rows[0] = append(tbl.Rows[0], "12.5", "")
	tbl.Rows[1] = append(tbl.Rows[1], "", "40")

	d, err := BuildDataset("custom", OriginPrimary, tbl)
	require.NoError(t, err)
	fields := d.Fields()
	assert.Equal(t, []string{"SNR_MK", "WIDTH_MK"}, fields[len(fields)-2:])
	assert.Equal(t, "F0", fields[0])

	r, _ := d.Lookup("J1")
	assert.Equal(t, 12.5, r.Values["WIDTH_MK"])
	assert.Equal(t, 0.0, r.Values["SNR_MK"])
	assert.Equal(t, 12.5, r.Physical("WIDTH_MK"))
}

func TestRecordsIsCopy(t *testing.T) {
	d := pulsarFixture(t)
	recs := d.Records()
	recs[0] = Record{JName: "changed"}
	again := d.Records()
	assert.Equal(t, "J0437-4715", again[0].JName)
}

func TestLoadDatasetFromCSV(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("\ufeff" + strings.Join(fixtureHeader, ",") + "\n")
	b.WriteString("# exported by psrcat\n")
	b.WriteString(strings.Join(row(map[string]string{"JNAME": "J1", "DM": "3", "CATEGORY": "TIME:STAB"}), ",") + "\n")
	path := writeFile(t, dir, "tpa.csv", b.String())

	d, err := LoadDataset(path, OriginPrimary)
	require.NoError(t, err)
	r, ok := d.Lookup("J1")
	require.True(t, ok)
	assert.Equal(t, 3.0, r.Values["DM"])
	assert.True(t, r.Classified())

	_, err = LoadDataset(filepath.Join(dir, "missing.csv"), OriginPrimary)
	var dl *DataLoadError
	assert.True(t, errors.As(err, &dl))
}

func TestLoadDatasetTSV(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join(fixtureHeader, "\t") + "\n" +
		strings.Join(row(map[string]string{"JNAME": "J1", "P0": "0.5"}), "\t") + "\n"
	path := writeFile(t, dir, "tpa.tsv", content)
	d, err := LoadDataset(path, OriginPrimary)
	require.NoError(t, err)
	r, _ := d.Lookup("J1")
	assert.Equal(t, 0.5, r.Values["P0"])
}

func TestFieldTransformInverse(t *testing.T) {
	for _, spec := range NumericFields() {
		raw := 123.0
		if spec.Signed {
			raw = -raw
		}
		stored, sign := spec.Forward(raw)
		assert.InEpsilon(t, raw, spec.Inverse(stored, sign), 1e-12, spec.Name)
	}
	assert.Equal(t, FieldSpec{Name: "X_MK", Title: "X_MK", Scale: 1, Custom: true}, LookupField("X_MK"))
}

func TestSanitizeComment(t *testing.T) {
	assert.Equal(t, "nicepulsar2", SanitizeComment("  nice,  pulsar!! #2 "))
	assert.Equal(t, "nicedoublepeak", SanitizeComment("nice double peak!"))
	assert.Equal(t, "NA", SanitizeComment(",,,"))
	assert.Equal(t, "NA", SanitizeComment(" \t\n "))
	assert.Equal(t, "ABC", SanitizeComment("ＡＢＣ"))
}
