package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
)

func TestParseHours_Validas(t *testing.T) {
	cases := map[string]string{
		"3.5":    "3.5",
		" 3.5\n": "3.5",
		"3,5":    "3.5",
		"40":     "40",
		"0.25":   "0.25",
	}
	for in, want := range cases {
		h, err := billing.ParseHours(in)
		require.NoError(t, err, "ParseHours(%q)", in)
		assert.Equal(t, want, h.String())
	}
}

func TestParseHours_Invalidas(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "0", "0.00", "-1", "1,2,3", "3.5h"} {
		_, err := billing.ParseHours(in)
		assert.ErrorIs(t, err, domain.ErrInvalidHours, "ParseHours(%q)", in)
	}
}
