package tui

import (
	"strings"
	"testing"

	"github.com/aretw0/tabula/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "Ada", want: "Ada"},
		{name: "keeps whitespace controls", input: "a\tb\r\n", want: "a\tb\r\n"},
		{name: "strips escapes", input: "\x1b[31mRed\x1b[0m", want: "[31mRed[0m"},
		{name: "strips nul and bell", input: "A\x00d\x07a", want: "Ada"},
		{name: "invalid utf8", input: "\xff\xfe", wantErr: ErrInvalidUTF8},
		{name: "too large", input: strings.Repeat("x", MaxInputSize+1), wantErr: ErrInputTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnswer_Sanitizes(t *testing.T) {
	v, err := ParseAnswer(&domain.ResolvedSelection{Kind: domain.SelectText}, "\x1bAda\x07")
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)

	_, err = ParseAnswer(&domain.ResolvedSelection{Kind: domain.SelectText}, "\xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
