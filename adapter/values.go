package adapter

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// normalizeValue converts driver values that have no natural Go form.
// NUMERIC becomes decimal.Decimal, or float64 for NaN and infinities.
func normalizeValue(v any) any {
	if n, ok := v.(pgtype.Numeric); ok {
		return numericValue(n)
	}
	return v
}

func numericValue(n pgtype.Numeric) any {
	switch {
	case !n.Valid:
		return nil
	case n.NaN || n.InfinityModifier != pgtype.Finite:
		f, err := n.Float64Value()
		if err != nil {
			return nil
		}
		return f.Float64
	case n.Int == nil:
		return decimal.Zero
	default:
		return decimal.NewFromBigInt(n.Int, n.Exp)
	}
}
