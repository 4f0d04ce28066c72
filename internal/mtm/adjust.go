package mtm

import (
	"strings"

	"github.com/shopspring/decimal"

	"sheetcalc/pkg/contracts/domain"
)

// FeReferenceGrade is the iron content, in percent, index prices are quoted at.
var FeReferenceGrade = decimal.NewFromInt(62)

var one = decimal.NewFromInt(1)

// FeAdjustmentRatio scales the index price to the contract's iron content.
// The ratio is 1 when the contract opts out with the NOADJ flag or has no
// typical Fe value.
func FeAdjustmentRatio(c domain.ContractRecord) decimal.Decimal {
	if strings.EqualFold(strings.TrimSpace(c.FeAdjFlag), domain.FeFlagNoAdjust) {
		return one
	}
	if !c.TypicalFe.Valid {
		return one
	}
	return c.TypicalFe.Decimal.Div(FeReferenceGrade)
}
