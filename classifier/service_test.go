package classifier

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	catalogue := mustDataset(t, OriginCatalogue,
		map[string]string{"JNAME": "J0534+2200", "P0": "0.0334", "P1": "4.2e-13", "DM": "56.8"},
	)
	rec := NewFileRecorder(filepath.Join(t.TempDir(), "c.log"), DefaultTaxonomy())
	s := NewServiceFrom(Store{Primary: pulsarFixture(t), Catalogue: catalogue}, nil, rec, zap.New(core))
	return s, logs
}

func TestServiceRecompute(t *testing.T) {
	s, _ := newTestService(t)
	f := s.NewFacets()
	f.SetRange("DM", 0, 100)

	v := s.Recompute(f, false)
	assert.Equal(t, 3, v.Selection.Len())
	assert.Equal(t, 3, v.Summary.Count)
	assert.Len(t, v.Points, 3)
	assert.Equal(t, "3 of 4 pulsars selected", v.Status)

	v = s.Recompute(f, true)
	assert.Equal(t, 3, v.Summary.Count, "summary covers the selection only")
	require.Len(t, v.Points, 4)
	assert.Equal(t, OriginCatalogue, v.Points[3].Origin)
}

func TestServiceLookup(t *testing.T) {
	s, _ := newTestService(t)
	r, ok := s.Lookup("J0534+2200")
	require.True(t, ok)
	assert.Equal(t, OriginCatalogue, r.Origin)
	_, ok = s.Lookup("J0000+0000")
	assert.False(t, ok)
}

func TestServiceClassify(t *testing.T) {
	s, logs := newTestService(t)

	e, err := s.Classify("J0835-4510", "ann", "glitches a lot", map[Category][]string{
		CategoryTime:    {"Glitching"},
		CategoryProfile: {"Gaussian"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROFILE:GAU;TIME:GLT", e.Tags)
	assert.Equal(t, 1, logs.FilterMessage("classification saved").Len())

	hist, err := s.History("J0835-4510")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "ann", hist[0].Username)
	assert.Equal(t, hist[0], e, "returned entry is the stored line")
	assert.Equal(t, "glitchesalot", e.Comment)

	_, err = s.Classify("J0835-4510", "", "x", nil)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, strings.HasPrefix(Status(err), "Not saved:"))

	hist, err = s.History("J0835-4510")
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestServiceRecomputeLogsMalformedTags(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := mustDataset(t, OriginPrimary,
		map[string]string{"JNAME": "J1", "CATEGORY": "PROFILE"},
	)
	s := NewServiceFrom(Store{Primary: d}, nil, nil, zap.New(core))
	v := s.Recompute(s.NewFacets(), true)
	assert.Contains(t, v.Status, "1 with unreadable tags")
	assert.Equal(t, 1, logs.FilterMessage("skipping malformed tags").Len())

	_, err := s.History("J1")
	assert.Error(t, err)
}

func TestNewServiceFromConfig(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString(strings.Join(fixtureHeader, ",") + "\n")
	b.WriteString(strings.Join(row(map[string]string{"JNAME": "J1", "DM": "3"}), ",") + "\n")
	data := writeFile(t, dir, "tpa.csv", b.String())
	tags := writeFile(t, dir, "tags.txt", "#PROFILE\nGaussian\n")

	cfg := Config{Dataset: data, Taxonomy: tags, Log: LogConfig{Backend: BackendSQLite, Path: filepath.Join(dir, "c.db")}}
	s, err := NewService(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	saved, err := s.ClassifyTags(" J1 ", "ann", "", "PROFILE:GAU")
	require.NoError(t, err)
	hist, err := s.History("J1")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, Entry{Key: "J1", Username: "ann", Comment: SentinelNA, Tags: "PROFILE:GAU"}, saved)
	assert.Equal(t, saved, hist[0])
	_, err = s.ClassifyTags("J1", "ann", "", "TIME:STAB")
	assert.Error(t, err, "STAB is not in this taxonomy")

	cfg.Taxonomy = filepath.Join(dir, "absent.txt")
	cfg.Log = LogConfig{}
	s2, err := NewService(cfg, nil)
	require.NoError(t, err)
	assert.True(t, s2.Taxonomy().Contains(CategoryTime, "STAB"))

	cfg.Dataset = filepath.Join(dir, "absent.csv")
	_, err = NewService(cfg, nil)
	var dl *DataLoadError
	assert.True(t, errors.As(err, &dl))
	assert.True(t, strings.HasPrefix(Status(err), "Could not load data"))
}
