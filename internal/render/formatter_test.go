package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyFormatter(t *testing.T) {
	formatter, err := NewMoneyFormatter("EUR", "en")
	require.NoError(t, err)

	assert.Equal(t, "EUR", formatter.Currency())
	assert.Contains(t, formatter.Format(12150), "121.50")
	assert.Contains(t, formatter.Format(0), "0.00")
}

func TestMoneyFormatterInvalidCurrency(t *testing.T) {
	_, err := NewMoneyFormatter("NOPE", "en")
	assert.Error(t, err)
}

func TestMoneyFormatterInvalidLocale(t *testing.T) {
	_, err := NewMoneyFormatter("EUR", "!!")
	assert.Error(t, err)
}
