package mtm

import (
	"time"

	"github.com/shopspring/decimal"

	"sheetcalc/internal/config"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/pkg/contracts/domain"
)

// Report is the valued Contracts table.
type Report struct {
	ValuationDate time.Time
	Contracts     []domain.ValuedContract

	columns []string
	fields  []contractField
	cfg     config.MTMConfig
}

// Summary aggregates a report for logs, metrics and CLI output.
type Summary struct {
	ValuationDate time.Time       `json:"valuation_date"`
	Contracts     int             `json:"contracts"`
	Priced        int             `json:"priced"`
	Unpriced      int             `json:"unpriced"`
	TotalMTM      decimal.Decimal `json:"total_mtm"`
}

// Assemble stamps the valuation date on every valued contract and keeps the
// source column layout for rendering.
func Assemble(sheet *ContractSheet, valued []domain.ValuedContract, valuationDate time.Time, cfg config.MTMConfig) *Report {
	stamp := spreadsheet.Midnight(valuationDate)
	for i := range valued {
		valued[i].ValuationDate = stamp
	}
	return &Report{
		ValuationDate: stamp,
		Contracts:     valued,
		columns:       sheet.Columns,
		fields:        sheet.fields,
		cfg:           cfg,
	}
}

// Len returns the number of report rows.
func (r *Report) Len() int {
	return len(r.Contracts)
}

// Summary counts priced contracts and totals their value.
func (r *Report) Summary() Summary {
	s := Summary{ValuationDate: r.ValuationDate, Contracts: len(r.Contracts), TotalMTM: decimal.Zero}
	for _, c := range r.Contracts {
		if c.Priced() {
			s.Priced++
		} else {
			s.Unpriced++
		}
		if c.MTMValue.Valid {
			s.TotalMTM = s.TotalMTM.Add(c.MTMValue.Decimal)
		}
	}
	return s
}

// Columns returns the report header: the source contract columns followed by
// the derived columns and the valuation date.
func (r *Report) Columns() []string {
	derived := r.derivedColumns()
	replaced := make(map[string]bool, len(derived))
	for _, name := range derived {
		replaced[name] = true
	}

	cols := make([]string, 0, len(r.columns)+len(derived))
	for _, c := range r.columns {
		if !replaced[c] {
			cols = append(cols, c)
		}
	}
	return append(cols, derived...)
}

// Table renders the report for export.
func (r *Report) Table() *domain.Table {
	derived := r.derivedColumns()
	replaced := make(map[string]bool, len(derived))
	for _, name := range derived {
		replaced[name] = true
	}

	t := domain.NewTable(r.cfg.ReportSheet, r.Columns()...)
	for _, c := range r.Contracts {
		row := make([]any, 0, len(t.Columns))
		for i, header := range r.columns {
			if replaced[header] {
				continue
			}
			f := fieldNone
			if i < len(r.fields) {
				f = r.fields[i]
			}
			row = append(row, sourceCell(c.ContractRecord, f, header))
		}
		row = append(row,
			c.BaseIndexPrice,
			c.FeAdjustmentRatio,
			c.QuantityDMT,
			c.MTMValue,
			c.ValuationDate,
		)
		t.Append(row...)
	}
	return t
}

func (r *Report) derivedColumns() []string {
	return []string{
		config.ColumnBaseIndexPrice,
		config.ColumnFeAdjustmentRatio,
		config.ColumnQuantityDMT,
		config.ColumnMTMValue,
		r.cfg.ReportDateColumn,
	}
}

func sourceCell(c domain.ContractRecord, f contractField, header string) any {
	switch f {
	case fieldContractID:
		return c.ContractID
	case fieldIndexName:
		return c.IndexName
	case fieldTenor:
		return c.Tenor
	case fieldTypicalFe:
		return c.TypicalFe
	case fieldFeAdjFlag:
		return c.FeAdjFlag
	case fieldCost:
		return c.Cost
	case fieldDiscount:
		return c.Discount
	case fieldQuantity:
		return c.Quantity
	case fieldUnit:
		return c.Unit
	case fieldMoisture:
		return c.Moisture
	}
	return c.Attributes[header]
}
