package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quantity units used on the Contracts sheet.
const (
	UnitDMT = "DMT"
	UnitWMT = "WMT"
)

// FeFlagNoAdjust disables the iron-content adjustment for a contract.
const FeFlagNoAdjust = "NOADJ"

// PriceRecord is one row of the Price sheet.
// A zero Date means the date cell was empty; such rows never resolve a price.
type PriceRecord struct {
	Date      time.Time           `json:"date"`
	IndexName string              `json:"index_name"`
	Tenor     string              `json:"tenor"`
	Price     decimal.NullDecimal `json:"price"`
}

// HasDate reports whether the record carries a usable date.
func (p PriceRecord) HasDate() bool {
	return !p.Date.IsZero()
}

// PriceKey is the composite join key between prices and contracts.
type PriceKey struct {
	IndexName string
	Tenor     string
}

// Key returns the join key of the price record.
func (p PriceRecord) Key() PriceKey {
	return PriceKey{IndexName: p.IndexName, Tenor: p.Tenor}
}

// ContractRecord is one row of the Contracts sheet after normalization.
type ContractRecord struct {
	ContractID string              `json:"contract_id"`
	IndexName  string              `json:"index_name"`
	Tenor      string              `json:"tenor"`
	TypicalFe  decimal.NullDecimal `json:"typical_fe"`
	FeAdjFlag  string              `json:"fe_adj_flag,omitempty"`
	Cost       decimal.NullDecimal `json:"cost"`
	Discount   decimal.NullDecimal `json:"discount"`
	Quantity   decimal.NullDecimal `json:"quantity"`
	Unit       string              `json:"unit,omitempty"`
	Moisture   decimal.NullDecimal `json:"moisture"`

	// Attributes holds cells of columns that are not bound to a field,
	// keyed by header, so reports can reproduce the full sheet. Values are
	// nil, string, decimal.Decimal or time.Time.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Key returns the join key used to look up the contract's base price.
func (c ContractRecord) Key() PriceKey {
	return PriceKey{IndexName: c.IndexName, Tenor: c.Tenor}
}

// ValuedContract is a contract enriched with its derived valuation columns.
type ValuedContract struct {
	ContractRecord

	BaseIndexPrice    decimal.NullDecimal `json:"base_index_price"`
	FeAdjustmentRatio decimal.Decimal     `json:"fe_adjustment_ratio"`
	QuantityDMT       decimal.NullDecimal `json:"quantity_dmt"`
	MTMValue          decimal.NullDecimal `json:"mtm_value"`
	ValuationDate     time.Time           `json:"valuation_date"`
}

// Priced reports whether a base index price was resolved for the contract.
func (v ValuedContract) Priced() bool {
	return v.BaseIndexPrice.Valid
}
