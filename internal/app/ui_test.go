package app

import (
	"path/filepath"
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"meertime/tpaclassifier/classifier"
)

const uiFixture = `JNAME,BNAME,RAJ,DECJ,F0,F1,P0,P1,DM,RM,DIST,ASSOC,TYPE,PB,BINCOMP,AGE,BSURF,EDOT,NGLT,CATEGORY
J0437-4715,*,04:37,-47:15,173.69,-5.728e-16,0.005757,5.729e-20,2.64,0,0.157,GC:NGC6752,HE[1],5.74,MS,1.59e9,5.81e8,1.2e34,0,PROFILE:MC;POLARIZATION:PA
J0835-4510,B0833-45,08:35,-45:10,11.19,-1.567e-11,0.0893,1.25e-13,67.97,31.4,0.28,SNR:Vela,HE[2],,,1.13e4,3.38e12,6.9e36,20,PROFILE:GAU+DP;TIME:GLT
J1752-2806,B1749-28,17:52,-28:06,1.777,-2.57e-14,0.5626,8.13e-15,,96,0.2,*,,,,1.1e6,2.16e12,1.8e33,0,
`

func testService(t *testing.T) *classifier.Service {
	t.Helper()
	table, err := classifier.ParseTable(strings.NewReader(uiFixture), ',')
	require.NoError(t, err)
	d, err := classifier.BuildDataset("fixture", classifier.OriginPrimary, table)
	require.NoError(t, err)
	rec := classifier.NewFileRecorder(filepath.Join(t.TempDir(), "classifications.log"), nil)
	return classifier.NewServiceFrom(classifier.Store{Primary: d}, nil, rec, zaptest.NewLogger(t))
}

func TestDashboardFiltersAndResets(t *testing.T) {
	a := test.NewTempApp(t)
	u := buildUI(a, testService(t))

	require.Equal(t, 3, u.view.Selection.Len())
	assert.Len(t, u.rows, 3)
	assert.Equal(t, "3 of 3 pulsars selected", u.view.Status)
	assert.Contains(t, u.assocSel.Options, "SNR:Vela")

	u.assocSel.SetSelected("SNR:Vela")
	require.Equal(t, 1, u.view.Selection.Len())
	assert.Equal(t, "J0835-4510", u.rows[0][0])
	assert.Equal(t, []string{classifier.SentinelNA, "SNR:Vela"}, u.assocSel.Options)

	// Narrowed tag options follow the selection.
	assert.ElementsMatch(t, []string{"Gaussian", "DoublePeak"}, u.tagGroups[classifier.CategoryProfile].Options)

	u.onReset()
	assert.Equal(t, 3, u.view.Selection.Len())
	assert.Equal(t, classifier.SentinelNA, u.assocSel.Selected)
}

func TestDashboardTagGroup(t *testing.T) {
	a := test.NewTempApp(t)
	u := buildUI(a, testService(t))

	g := u.tagGroups[classifier.CategoryTime]
	require.Contains(t, g.Options, "Glitching")
	g.SetSelected([]string{"Glitching"})
	require.Equal(t, 1, u.view.Selection.Len())
	assert.Equal(t, []string{"GLT"}, u.facets.Members[string(classifier.CategoryTime)])
	assert.Equal(t, []string{"Glitching"}, g.Selected)
}

func TestDashboardRangeSlider(t *testing.T) {
	a := test.NewTempApp(t)
	u := buildUI(a, testService(t))

	var dm *rangeControl
	for _, rc := range u.ranges {
		if rc.field == "DM" {
			dm = rc
		}
	}
	require.NotNil(t, dm)
	assert.Equal(t, 0.0, dm.lo.Min)
	assert.Equal(t, 67.97, dm.hi.Max)

	dm.lo.SetValue(1)
	u.onRange(dm)
	require.Equal(t, 2, u.view.Selection.Len())
	assert.Equal(t, 2.64, dm.lo.Min, "slider narrows to the selection")
}
