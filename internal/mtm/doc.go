// Package mtm values iron ore contracts mark-to-market against an index
// price table.
//
// A valuation runs in four steps:
//
//	LoadPrices / LoadContracts   normalize sheet rows into typed records
//	LatestPrices                 build the as-of price index once per call
//	FeAdjustmentRatio,
//	QuantityDMT                  per-contract derived quantities
//	ComposeValue                 (price * ratio + cost) * discount * dmt
//
// Engine.Compute ties the steps together and returns a Report whose row
// count always equals the number of contracts. Contracts without a
// resolvable price keep a null price and a null value; they are never
// dropped and never raise an error.
package mtm
