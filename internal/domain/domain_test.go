package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision(" LIKE ")
	require.NoError(t, err)
	assert.Equal(t, Like, d)

	_, err = ParseDecision("love")
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestParseGenderFilter(t *testing.T) {
	f, err := ParseGenderFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseGenderFilter("W")
	require.NoError(t, err)
	assert.Equal(t, FilterFemale, f)

	_, err = ParseGenderFilter("x")
	assert.ErrorIs(t, err, ErrInvalidGender)
}

func TestRoleOther(t *testing.T) {
	assert.Equal(t, Mama, Papa.Other())
	assert.Equal(t, Papa, Mama.Other())

	_, err := ParseRole("grandpa")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, FoldName("änne"), FoldName(" Änne "))
	assert.Equal(t, FoldName("strauss"), FoldName("Strauß"))
	assert.NotEqual(t, FoldName("Anne"), FoldName("Änne"))
}

func TestParseLetter(t *testing.T) {
	for in, want := range map[string]string{"": "", " a ": "a", "Ö": "Ö"} {
		got, err := ParseLetter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"ab", "%", "_", "1", "Än"} {
		_, err := ParseLetter(in)
		assert.ErrorIs(t, err, ErrInvalidLetter, in)
	}
}
