package typedesc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/scoring"
)

func TestDefault_AllSixteen(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	codes := Codes()
	require.Len(t, codes, 16)
	for _, code := range codes {
		d, err := c.Describe(code)
		require.NoError(t, err, code)
		assert.NotEmpty(t, d.Title, code)
		assert.Greater(t, len(d.Overview), 20, code)
		assert.Greater(t, len(d.RelationshipStyle), 20, code)
		assert.NotEmpty(t, d.Strengths, code)
		assert.NotEmpty(t, d.CareerMatches, code)
		assert.Len(t, d.Stack, 4, code)
	}
}

func TestDefault_Functions(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	for _, code := range []string{"Ni", "Ne", "Si", "Se", "Ti", "Te", "Fi", "Fe"} {
		fn, ok := c.Function(code)
		require.True(t, ok, code)
		assert.NotEmpty(t, fn.Characteristics, code)
	}
}

func TestDescribe_Unknown(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, code := range []string{"XXXX", "ENTX", "", "INTJK"} {
		_, err := c.Describe(code)
		assert.True(t, errors.Is(err, ErrUnknownType), "Describe(%q)", code)
	}
	_, err = c.Analyze("XNTJ", nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestAnalyze(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	scores := []scoring.DimensionScore{
		scoring.Score(dimension.EI, []int{1, 1, 1, 1}),
		scoring.Score(dimension.SN, []int{5, 4, 5, 4}),
		scoring.Score(dimension.TF, []int{3, 3}),
		scoring.Score(dimension.JP, []int{4, 4, 4, 4}),
	}
	a, err := c.Analyze("intj", scores)
	require.NoError(t, err)

	assert.Equal(t, "INTJ", a.Type)
	assert.Equal(t, "The Architect", a.Title)
	assert.Equal(t, "Ni (Introverted Intuition)", a.CognitiveStack.Dominant)
	assert.Equal(t, "Se (Extraverted Sensing)", a.CognitiveStack.Inferior)
	assert.Equal(t, "Analysts", a.Family)
	assert.ElementsMatch(t, []string{"INTP", "ENTJ", "ENTP"}, a.Compatible)
	assert.Equal(t, []string{
		"Strong Introversion preference (100.0%)",
		"Strong Intuition preference (87.5%)",
		"Balanced between Feeling and Thinking",
		"Strong Judging preference (75.0%)",
	}, a.DimensionInsights)
}

func TestFamilies(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	fams := c.Families()
	require.Len(t, fams, 4)
	seen := map[string]bool{}
	for _, f := range fams {
		for _, m := range f.Members {
			assert.False(t, seen[m], "%s in two families", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, 16)
	assert.Nil(t, c.Compatible("XXXX"))
}

func TestParse_Integrity(t *testing.T) {
	bad := strings.Replace(string(defaultTypesYAML), "stack: [Ni, Te, Fi, Se]", "stack: [Ni, Te, Fi, Zz]", 1)
	_, err := Parse([]byte(bad))
	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Contains(t, ie.Error(), `unknown function "Zz"`)

	missing := strings.Replace(string(defaultTypesYAML), "  ESFP:\n", "  ESFX:\n", 1)
	_, err = Parse([]byte(missing))
	assert.True(t, errors.As(err, &ie))

	_, err = Parse([]byte("version: v2.0.0\nfamilies: {}\n"))
	assert.True(t, errors.As(err, &ie))
}
