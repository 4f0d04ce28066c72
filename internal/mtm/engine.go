package mtm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"sheetcalc/internal/config"
	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/pkg/contracts/domain"
)

// Engine values Contracts against a Price table.
type Engine struct {
	cfg    config.MTMConfig
	logger *slog.Logger
}

// NewEngine creates an engine reading sheets and columns named by cfg.
func NewEngine(cfg config.MTMConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "mtm_engine")),
	}
}

// Config returns the sheet configuration the engine was built with.
func (e *Engine) Config() config.MTMConfig {
	return e.cfg
}

// ParseValuationDate parses a user supplied valuation date. An empty string
// yields nil so the date is inferred from the prices.
func ParseValuationDate(s string) (*time.Time, error) {
	t, ok, err := spreadsheet.Date(s)
	if err != nil {
		return nil, apperrors.NewDataFormatError("valuation date", strings.TrimSpace(s), err)
	}
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// ValueWorkbook loads the Price and Contracts sheets from wb and values them.
// valuationDate may be empty.
func (e *Engine) ValueWorkbook(ctx context.Context, wb *spreadsheet.Workbook, valuationDate string) (*Report, error) {
	asOf, err := ParseValuationDate(valuationDate)
	if err != nil {
		return nil, err
	}

	priceSheet, err := wb.Sheet(e.cfg.PriceSheet)
	if err != nil {
		return nil, err
	}
	prices, err := LoadPrices(priceSheet, e.cfg)
	if err != nil {
		return nil, err
	}

	contractSheet, err := wb.Sheet(e.cfg.ContractsSheet)
	if err != nil {
		return nil, err
	}
	contracts, err := LoadContracts(contractSheet, e.cfg)
	if err != nil {
		return nil, err
	}

	return e.Compute(ctx, prices, contracts, asOf)
}

// Compute values every contract as of valuationDate, or as of the latest
// price date when valuationDate is nil. Prices are filtered against the
// exact cutoff; the report carries the cutoff truncated to midnight.
func (e *Engine) Compute(ctx context.Context, prices []domain.PriceRecord, contracts *ContractSheet, valuationDate *time.Time) (*Report, error) {
	var asOf time.Time
	if valuationDate != nil {
		asOf = *valuationDate
	} else {
		inferred, err := InferValuationDate(prices)
		if err != nil {
			return nil, err
		}
		asOf = inferred
		e.logger.DebugContext(ctx, "valuation date inferred from prices",
			slog.Time("valuation_date", asOf),
		)
	}

	index := LatestPrices(prices, asOf)

	valued := make([]domain.ValuedContract, len(contracts.Contracts))
	for i, c := range contracts.Contracts {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		valued[i] = Value(c, index)
	}

	report := Assemble(contracts, valued, asOf, e.cfg)
	summary := report.Summary()
	e.logger.InfoContext(ctx, "contracts valued",
		slog.Time("valuation_date", report.ValuationDate),
		slog.Time("price_cutoff", index.AsOf()),
		slog.Int("prices", len(prices)),
		slog.Int("price_keys", index.Len()),
		slog.Int("contracts", summary.Contracts),
		slog.Int("unpriced", summary.Unpriced),
	)
	return report, nil
}

// Value derives the MTM columns for a single contract.
func Value(c domain.ContractRecord, index PriceIndex) domain.ValuedContract {
	base := index.Resolve(c.Key())
	ratio := FeAdjustmentRatio(c)
	qty := QuantityDMT(c)
	return domain.ValuedContract{
		ContractRecord:    c,
		BaseIndexPrice:    base,
		FeAdjustmentRatio: ratio,
		QuantityDMT:       qty,
		MTMValue:          ComposeValue(base, ratio, c.Cost, c.Discount, qty),
	}
}
