package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rezonia/invoice-submit/internal/decimal"
)

func TestMul(t *testing.T) {
	tests := []struct {
		quantity  string
		unitPrice string
		expected  string
	}{
		{"3", "3.333", "10"},
		{"1", "81.9672", "81.97"},
		{"2.5", "19.99", "49.98"},
		{"0", "100", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.quantity+"x"+tt.unitPrice, func(t *testing.T) {
			result := decimal.Mul(dec.RequireFromString(tt.quantity), dec.RequireFromString(tt.unitPrice))
			assert.True(t, result.Equal(dec.RequireFromString(tt.expected)),
				"got %s, want %s", result.String(), tt.expected)
		})
	}
}

func TestCalculateTax(t *testing.T) {
	tests := []struct {
		name     string
		net      string
		rate     string
		expected string
	}{
		{"22% of 100", "100", "22", "22"},
		{"9.5% of 100", "100", "9.5", "9.5"},
		{"9.5% of 33.33", "33.33", "9.5", "3.17"},
		{"0% of 100", "100", "0", "0"},
		{"5% of 0.1", "0.1", "5", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := decimal.CalculateTax(dec.RequireFromString(tt.net), dec.RequireFromString(tt.rate))
			assert.True(t, result.Equal(dec.RequireFromString(tt.expected)),
				"got %s, want %s", result.String(), tt.expected)
		})
	}
}

func TestNetFromGross(t *testing.T) {
	tests := []struct {
		gross    string
		rate     string
		expected string
	}{
		{"122", "22", "100"},
		{"109.5", "9.5", "100"},
		{"100", "22", "81.9672"},
		{"50", "0", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.gross+"@"+tt.rate, func(t *testing.T) {
			result := decimal.NetFromGross(dec.RequireFromString(tt.gross), dec.RequireFromString(tt.rate))
			assert.True(t, result.Equal(dec.RequireFromString(tt.expected)),
				"got %s, want %s", result.String(), tt.expected)
		})
	}
}

func TestCalculateLineTotal(t *testing.T) {
	// Total = 100 - 10 + 19.8 = 109.8
	result := decimal.CalculateLineTotal(dec.NewFromInt(100), dec.NewFromInt(10), dec.RequireFromString("19.8"))
	assert.True(t, result.Equal(dec.RequireFromString("109.8")))
}

func TestPercentage(t *testing.T) {
	result := decimal.Percentage(dec.NewFromInt(500), dec.NewFromInt(15))
	assert.True(t, result.Equal(dec.NewFromInt(75)))
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(100),
		dec.NewFromInt(200),
		dec.NewFromInt(300),
	}
	result := decimal.Sum(values)
	assert.True(t, result.Equal(dec.NewFromInt(600)))
}

func TestSum_Empty(t *testing.T) {
	result := decimal.Sum([]dec.Decimal{})
	assert.True(t, result.IsZero())
}

func TestIsPositive(t *testing.T) {
	assert.True(t, decimal.IsPositive(dec.NewFromInt(1)))
	assert.False(t, decimal.IsPositive(dec.Zero))
	assert.False(t, decimal.IsPositive(dec.NewFromInt(-1)))
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, decimal.IsNonNegative(dec.NewFromInt(1)))
	assert.True(t, decimal.IsNonNegative(dec.Zero))
	assert.False(t, decimal.IsNonNegative(dec.NewFromInt(-1)))
}

func TestRoundMoney(t *testing.T) {
	result := decimal.RoundMoney(dec.RequireFromString("123.455"))
	assert.True(t, result.Equal(dec.RequireFromString("123.46")))
}
