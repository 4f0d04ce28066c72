package mtm

import (
	"strings"

	"github.com/shopspring/decimal"

	"sheetcalc/pkg/contracts/domain"
)

// QuantityDMT converts the contract quantity to dry metric tonnes.
// WMT quantities lose their moisture fraction (null moisture counts as 0);
// any other unit, including none, keeps the quantity as is.
func QuantityDMT(c domain.ContractRecord) decimal.NullDecimal {
	if !c.Quantity.Valid {
		return decimal.NullDecimal{}
	}
	if !strings.EqualFold(strings.TrimSpace(c.Unit), domain.UnitWMT) {
		return c.Quantity
	}

	moisture := decimal.Zero
	if c.Moisture.Valid {
		moisture = c.Moisture.Decimal
	}
	return decimal.NewNullDecimal(c.Quantity.Decimal.Mul(one.Sub(moisture)))
}
