package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"($9.00)", "9"},
		{"$3.00", "-3"},
		{"  ($5.00)  ", "5"},
		{"$1,250.50", "-1250.5"},
		{"(1.75)", "1.75"},
		{"4.20", "-4.2"},
		{"( $2.10 )", "2.1"},
		{"", "0"},
		{"   ", "0"},
		{"abc", "0"},
		{"($)", "0"},
		{"NaN", "0"},
		{"($0.005)", "0.01"},
		{"$0.004", "0"},
		{"($2.345)", "2.35"},
		{"($9,999,999,999.99)", "9999999999.99"},
		{"($10,000,000,000.00)", "0"},
		{"($1e400)", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseAmount(tt.raw)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	got, ok := NormalizeAmount(decimal.RequireFromString("-1.005"))
	assert.True(t, ok)
	assert.Equal(t, "-1.01", got.String())

	_, ok = NormalizeAmount(decimal.RequireFromString("-10000000000"))
	assert.False(t, ok)

	_, ok = NormalizeAmount(decimal.RequireFromString("1e400"))
	assert.False(t, ok)
}
