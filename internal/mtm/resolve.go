package mtm

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "sheetcalc/internal/errors"
	"sheetcalc/pkg/contracts/domain"
)

// ErrNoPrices is returned when no valuation date is given and none can be
// taken from the price table.
var ErrNoPrices = apperrors.NewConfigError("cannot infer valuation date: no prices", nil)

// PriceIndex maps each (index name, tenor) pair to its latest price on or
// before the as-of time.
type PriceIndex struct {
	asOf   time.Time
	latest map[domain.PriceKey]domain.PriceRecord
}

// LatestPrices builds the as-of index in a single pass. Records dated after
// asOf and undated records are ignored. When two records share the maximal
// date the later one in input order wins.
func LatestPrices(prices []domain.PriceRecord, asOf time.Time) PriceIndex {
	latest := make(map[domain.PriceKey]domain.PriceRecord)
	for _, p := range prices {
		if !p.HasDate() || p.Date.After(asOf) {
			continue
		}
		key := p.Key()
		if best, ok := latest[key]; ok && p.Date.Before(best.Date) {
			continue
		}
		latest[key] = p
	}
	return PriceIndex{asOf: asOf, latest: latest}
}

// Resolve returns the base price for key, null when no record qualifies.
// A qualifying record whose own price is null also resolves to null.
func (ix PriceIndex) Resolve(key domain.PriceKey) decimal.NullDecimal {
	p, ok := ix.latest[key]
	if !ok {
		return decimal.NullDecimal{}
	}
	return p.Price
}

// Lookup returns the record selected for key.
func (ix PriceIndex) Lookup(key domain.PriceKey) (domain.PriceRecord, bool) {
	p, ok := ix.latest[key]
	return p, ok
}

// Len returns the number of distinct keys with a qualifying price.
func (ix PriceIndex) Len() int {
	return len(ix.latest)
}

// AsOf returns the cutoff the index was built for.
func (ix PriceIndex) AsOf() time.Time {
	return ix.asOf
}

// InferValuationDate returns the latest date present in prices.
func InferValuationDate(prices []domain.PriceRecord) (time.Time, error) {
	var latest time.Time
	for _, p := range prices {
		if p.HasDate() && p.Date.After(latest) {
			latest = p.Date
		}
	}
	if latest.IsZero() {
		return time.Time{}, ErrNoPrices
	}
	return latest, nil
}
