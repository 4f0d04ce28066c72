package mtm

import "github.com/shopspring/decimal"

// ComposeValue computes (base * ratio + cost) * discount * quantityDMT.
// A null cost counts as 0 and a null discount as 1; a null base price or
// quantity makes the whole value null.
func ComposeValue(base decimal.NullDecimal, ratio decimal.Decimal, cost, discount, quantityDMT decimal.NullDecimal) decimal.NullDecimal {
	if !base.Valid || !quantityDMT.Valid {
		return decimal.NullDecimal{}
	}

	c := decimal.Zero
	if cost.Valid {
		c = cost.Decimal
	}
	d := one
	if discount.Valid {
		d = discount.Decimal
	}

	value := base.Decimal.Mul(ratio).Add(c).Mul(d).Mul(quantityDMT.Decimal)
	return decimal.NewNullDecimal(value)
}
