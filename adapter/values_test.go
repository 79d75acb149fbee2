package adapter

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"decimal", pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}, "123.45"},
		{"integer", pgtype.Numeric{Int: big.NewInt(42), Valid: true}, "42"},
		{"zero without int", pgtype.Numeric{Valid: true}, "0"},
		{"null", pgtype.Numeric{}, nil},
		{"other values untouched", "text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeValue(tt.in)
			if d, ok := got.(decimal.Decimal); ok {
				assert.Equal(t, tt.want, d.String())
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSpecialNumeric(t *testing.T) {
	got, ok := normalizeValue(pgtype.Numeric{NaN: true, Valid: true}).(float64)
	require.True(t, ok)
	assert.True(t, math.IsNaN(got))

	got, ok = normalizeValue(pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}).(float64)
	require.True(t, ok)
	assert.True(t, math.IsInf(got, 1))
}
