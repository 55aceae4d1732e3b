package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrcidID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "0000-0002-1825-0097", "0000-0002-1825-0097"},
		{"http url", "http://orcid.org/0000-0001-5109-3700", "0000-0001-5109-3700"},
		{"bare digits with X", "000000021694233X", "0000-0002-1694-233X"},
		{"lowercase x", "000000021694233x", "0000-0002-1694-233X"},
		{"uppercase url", "HTTP://ORCID.ORG/0000-0002-1694-233X", "0000-0002-1694-233X"},
		{"url with space", "https://orcid.org/ 0000-0002-1694-233X", "0000-0002-1694-233X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrcidID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrcidIDErrors(t *testing.T) {
	_, err := ParseOrcidID("2-1694-233X")
	assert.ErrorIs(t, err, ErrInvalidStructure)

	_, err = ParseOrcidID("0000-0002-1694-2330")
	assert.ErrorIs(t, err, ErrInvalidCheckDigit)
}

func TestParseRorID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical", "05hppb561", "05hppb561"},
		{"http url", "http://ror.org/05hppb561", "05hppb561"},
		{"uppercase url", "HTTP://ROR.ORG/05HPPB561", "05hppb561"},
		{"url with space", "http://ror.org/ 05hppb561", "05hppb561"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRorID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRorIDErrors(t *testing.T) {
	_, err := ParseRorID("05hppb500")
	assert.ErrorIs(t, err, ErrInvalidChecksum)

	_, err = ParseRorID("5hppb561")
	assert.ErrorIs(t, err, ErrInvalidStructure)
}
