package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBasicQuery(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("What did he say about the microscope Christmas present?")

	assert.Equal(t, []string{"microscope", "christmas", "present"}, norm.Terms)
	assert.Nil(t, norm.Date)
	assert.Empty(t, norm.Exclude)
	assert.Nil(t, norm.Proximity)
}

func TestNormalizeStripsPunctuation(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("money, trouble!! (father)")

	assert.Equal(t, []string{"money", "trouble", "father"}, norm.Terms)
}

func TestNormalizeAllStopwordsFallsBackToRawTokens(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("what did he say")

	assert.NotEmpty(t, norm.Terms)
	assert.Equal(t, norm.RawTokens, norm.Terms)
}

func TestNormalizeBeforeYear(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("money trouble before 1920")

	require.NotNil(t, norm.Date)
	assert.Equal(t, 0, norm.Date.YearStart)
	assert.Equal(t, 1919, norm.Date.YearEnd)
	assert.Equal(t, []string{"money", "trouble"}, norm.Terms)
}

func TestNormalizeAfterYear(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("fellowship after 1924")

	require.NotNil(t, norm.Date)
	assert.Equal(t, 1925, norm.Date.YearStart)
}

func TestNormalizeYearRange(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("college 1920-1923")

	require.NotNil(t, norm.Date)
	assert.Equal(t, 1920, norm.Date.YearStart)
	assert.Equal(t, 1923, norm.Date.YearEnd)
	assert.Equal(t, []string{"college"}, norm.Terms)
}

func TestNormalizeEraAlias(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("letters during the great war")

	require.NotNil(t, norm.Date)
	assert.Equal(t, 1914, norm.Date.YearStart)
	assert.Equal(t, 1918, norm.Date.YearEnd)
	assert.Contains(t, norm.Terms, "letters")
}

func TestNormalizeEraAliasNeedsWordBoundary(t *testing.T) {
	n := NewNormalizer(nil)

	queries := []string{
		"the wardrobe door",
		"the warden of the college",
		"the warm kitchen",
	}
	for _, q := range queries {
		norm := n.Normalize(q)
		assert.Nil(t, norm.Date, "query %q should carry no date filter", q)
	}
}

func TestNormalizeExclusion(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("Lewis NOT Warnie")

	assert.Equal(t, "warnie", norm.Exclude)
	assert.Equal(t, []string{"lewis"}, norm.Terms)
}

func TestNormalizeLowercaseNotIsAWord(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("why did he not go")

	assert.Empty(t, norm.Exclude)
}

func TestNormalizeProximity(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("Lewis NEAR(5) Arthur")

	require.NotNil(t, norm.Proximity)
	assert.Equal(t, "lewis", norm.Proximity.TermA)
	assert.Equal(t, "arthur", norm.Proximity.TermB)
	assert.Equal(t, 5, norm.Proximity.Distance)
	// Both terms survive as search terms
	assert.ElementsMatch(t, []string{"lewis", "arthur"}, norm.Terms)
}

func TestNormalizeSynonymExpansionIsAdditive(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("administrative duties")

	assert.Contains(t, norm.Terms, "administrative")
	assert.Contains(t, norm.Expansions["administrative"], "dean")
	assert.Contains(t, norm.Expansions["administrative"], "master")
}

func TestNormalizeMergesExtraSynonyms(t *testing.T) {
	n := NewNormalizer(map[string][]string{
		"tolkien": {"tolkein", "tolkin"},
	})

	norm := n.Normalize("meeting tolkien")

	assert.Contains(t, norm.Expansions["tolkien"], "tolkein")
}

func TestNormalizeEmptyQuery(t *testing.T) {
	n := NewNormalizer(nil)

	norm := n.Normalize("")

	assert.Empty(t, norm.Terms)
	assert.Empty(t, norm.RawTokens)
}

func TestTokenizeKeepsContractions(t *testing.T) {
	assert.Equal(t, []string{"narnia's", "door"}, Tokenize("Narnia's door"))
}
