package mtm

import (
	"fmt"
	"strings"

	"sheetcalc/internal/config"
	apperrors "sheetcalc/internal/errors"
	"sheetcalc/internal/spreadsheet"
	"sheetcalc/pkg/contracts/domain"
)

// contractField identifies the logical field a Contracts column is bound to.
type contractField int

const (
	fieldNone contractField = iota
	fieldContractID
	fieldIndexName
	fieldTenor
	fieldTypicalFe
	fieldFeAdjFlag
	fieldCost
	fieldDiscount
	fieldQuantity
	fieldUnit
	fieldMoisture
)

type binding struct {
	field    contractField
	name     string
	column   string
	required bool
}

// contractBindings lists the Contracts fields in report order.
func contractBindings(cfg config.MTMConfig) []binding {
	return []binding{
		{fieldContractID, "contract_id", cfg.ContractIDColumn, true},
		{fieldIndexName, "index_name", cfg.ContractIndexColumn, true},
		{fieldTenor, "tenor", cfg.ContractTenorColumn, true},
		{fieldTypicalFe, "typical_fe", cfg.TypicalFeColumn, true},
		{fieldFeAdjFlag, "fe_adj_flag", cfg.FeAdjFlagColumn, false},
		{fieldCost, "cost", cfg.CostColumn, false},
		{fieldDiscount, "discount", cfg.DiscountColumn, false},
		{fieldQuantity, "quantity", cfg.QuantityColumn, true},
		{fieldUnit, "unit", cfg.UnitColumn, false},
		{fieldMoisture, "moisture", cfg.MoistureColumn, false},
	}
}

// LoadPrices normalizes the Price sheet. All four columns are required.
// Empty date cells produce undated records; malformed dates are data format
// errors; unparseable prices become null.
func LoadPrices(sheet *spreadsheet.Sheet, cfg config.MTMConfig) ([]domain.PriceRecord, error) {
	dateCol, err := sheet.Require("date", cfg.PriceDateColumn)
	if err != nil {
		return nil, err
	}
	indexCol, err := sheet.Require("index_name", cfg.PriceIndexColumn)
	if err != nil {
		return nil, err
	}
	tenorCol, err := sheet.Require("tenor", cfg.PriceTenorColumn)
	if err != nil {
		return nil, err
	}
	priceCol, err := sheet.Require("price", cfg.PriceValueColumn)
	if err != nil {
		return nil, err
	}

	prices := make([]domain.PriceRecord, 0, sheet.Len())
	for _, row := range sheet.Rows {
		raw := row.Cell(dateCol)
		date, _, err := spreadsheet.Date(raw)
		if err != nil {
			location := fmt.Sprintf("sheet %q row %d column %q", sheet.Name, row.Number, cfg.PriceDateColumn)
			return nil, apperrors.NewDataFormatError(location, strings.TrimSpace(raw), err)
		}

		prices = append(prices, domain.PriceRecord{
			Date:      date,
			IndexName: spreadsheet.Text(row.Cell(indexCol)),
			Tenor:     spreadsheet.Text(row.Cell(tenorCol)),
			Price:     spreadsheet.Decimal(row.Cell(priceCol)),
		})
	}
	return prices, nil
}

// ContractSheet is the normalized Contracts sheet together with its
// original column order.
type ContractSheet struct {
	Columns   []string
	Contracts []domain.ContractRecord

	// fields[i] is the field bound to Columns[i], fieldNone when unbound.
	fields []contractField
}

// NewContractSheet wraps records that did not come from a sheet. Columns are
// the configured names of the fields, in report order.
func NewContractSheet(contracts []domain.ContractRecord, cfg config.MTMConfig) *ContractSheet {
	cs := &ContractSheet{Contracts: contracts}
	for _, b := range contractBindings(cfg) {
		if b.column == "" {
			continue
		}
		cs.Columns = append(cs.Columns, b.column)
		cs.fields = append(cs.fields, b.field)
	}
	return cs
}

// LoadContracts normalizes the Contracts sheet. Optional columns that are
// absent leave their fields empty; columns not bound to any field are kept
// in ContractRecord.Attributes with their stored cell types.
func LoadContracts(sheet *spreadsheet.Sheet, cfg config.MTMConfig) (*ContractSheet, error) {
	bound := make(map[int]contractField)
	indices := make(map[contractField]int)

	for _, b := range contractBindings(cfg) {
		idx := -1
		if b.required {
			var err error
			if idx, err = sheet.Require(b.name, b.column); err != nil {
				return nil, err
			}
		} else {
			idx = sheet.Optional(b.column)
		}
		indices[b.field] = idx
		if idx >= 0 {
			if _, taken := bound[idx]; !taken {
				bound[idx] = b.field
			}
		}
	}

	cell := func(row spreadsheet.Row, f contractField) string {
		return row.Cell(indices[f])
	}

	contracts := make([]domain.ContractRecord, 0, sheet.Len())
	for _, row := range sheet.Rows {
		c := domain.ContractRecord{
			ContractID: spreadsheet.Text(cell(row, fieldContractID)),
			IndexName:  spreadsheet.Text(cell(row, fieldIndexName)),
			Tenor:      spreadsheet.Text(cell(row, fieldTenor)),
			TypicalFe:  spreadsheet.Decimal(cell(row, fieldTypicalFe)),
			FeAdjFlag:  spreadsheet.Text(cell(row, fieldFeAdjFlag)),
			Cost:       spreadsheet.Decimal(cell(row, fieldCost)),
			Discount:   spreadsheet.Decimal(cell(row, fieldDiscount)),
			Quantity:   spreadsheet.Decimal(cell(row, fieldQuantity)),
			Unit:       strings.ToUpper(spreadsheet.Text(cell(row, fieldUnit))),
			Moisture:   spreadsheet.Decimal(cell(row, fieldMoisture)),
		}

		for i, header := range sheet.Headers {
			if _, ok := bound[i]; ok || header == "" {
				continue
			}
			if c.Attributes == nil {
				c.Attributes = make(map[string]any)
			}
			c.Attributes[header] = sheet.Value(row, i)
		}
		contracts = append(contracts, c)
	}

	fields := make([]contractField, len(sheet.Headers))
	for i := range sheet.Headers {
		fields[i] = bound[i]
	}

	return &ContractSheet{
		Columns:   append([]string(nil), sheet.Headers...),
		Contracts: contracts,
		fields:    fields,
	}, nil
}
