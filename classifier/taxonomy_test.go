package classifier

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxonomyDefaultCodes(t *testing.T) {
	tax, err := ParseTaxonomy(strings.NewReader("#PROFILE\nGaussian\nDoublePeak\n#TIME\nStable\n"))
	require.NoError(t, err)

	assert.Equal(t, []Category{CategoryProfile, CategoryTime}, tax.Categories())
	want := []TagCode{{Label: "Gaussian", Code: "GAU"}, {Label: "DoublePeak", Code: "DP"}}
	if diff := cmp.Diff(want, tax.Tags(CategoryProfile)); diff != "" {
		t.Fatalf("profile tags (-want +got):\n%s", diff)
	}

	c, err := ParseClassification("PROFILE:GAU+DP;TIME:STAB")
	require.NoError(t, err)
	require.NoError(t, tax.Validate(c))
}

func TestParseTaxonomyExplicitAndDerivedCodes(t *testing.T) {
	src := `
#profile
Unclassified
Broad Wings = BW
Weird-shape 2
#OBSERVATION
LowSN
`
	tax, err := ParseTaxonomy(strings.NewReader(src))
	require.NoError(t, err)

	code, ok := tax.Code(CategoryProfile, "Broad Wings")
	require.True(t, ok)
	assert.Equal(t, "BW", code)

	code, ok = tax.Code(CategoryProfile, "Weird-shape 2")
	require.True(t, ok)
	assert.Equal(t, "WEIRDSHAPE2", code)

	label, ok := tax.Label(CategoryObservation, "LSN")
	require.True(t, ok)
	assert.Equal(t, "LowSN", label)

	assert.NotContains(t, tax.Labels(CategoryProfile), "Unclassified")
}

func TestParseTaxonomyErrors(t *testing.T) {
	_, err := ParseTaxonomy(strings.NewReader("Gaussian\n#PROFILE\n"))
	assert.ErrorContains(t, err, "before any category header")

	_, err = ParseTaxonomy(strings.NewReader("#PROFILE\nOdd = A+B\n"))
	assert.ErrorContains(t, err, "reserved character")
}

func TestLoadTaxonomyMissing(t *testing.T) {
	_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestTaxonomyEncode(t *testing.T) {
	tax := DefaultTaxonomy()
	c, err := tax.Encode(map[Category][]string{
		CategoryProfile: {"Gaussian", "Unclassified"},
		CategoryTime:    {"Nulling"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROFILE:GAU;TIME:NULL", EncodeClassification(c))

	_, err = tax.Encode(map[Category][]string{CategoryTime: {"Sleepy"}})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "tags", ve.Field)
}

func TestTaxonomyValidate(t *testing.T) {
	tax := DefaultTaxonomy()
	assert.NoError(t, tax.Validate(Classification{CategoryPolarization: {"PA"}}))
	assert.Error(t, tax.Validate(Classification{CategoryPolarization: {"SPAN"}}))
}
