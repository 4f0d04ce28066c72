package config

import "fmt"

// MTMConfig binds the logical fields of the trading workbook to sheet and
// column names. It is passed explicitly to the valuation engine.
type MTMConfig struct {
	PriceSheet     string `yaml:"price_sheet" envconfig:"PRICE_SHEET"`
	ContractsSheet string `yaml:"contracts_sheet" envconfig:"CONTRACTS_SHEET"`

	PriceDateColumn  string `yaml:"price_date_column" envconfig:"PRICE_DATE_COLUMN"`
	PriceIndexColumn string `yaml:"price_index_column" envconfig:"PRICE_INDEX_COLUMN"`
	PriceTenorColumn string `yaml:"price_tenor_column" envconfig:"PRICE_TENOR_COLUMN"`
	PriceValueColumn string `yaml:"price_value_column" envconfig:"PRICE_VALUE_COLUMN"`

	ContractIDColumn    string `yaml:"contract_id_column" envconfig:"CONTRACT_ID_COLUMN"`
	ContractIndexColumn string `yaml:"contract_index_column" envconfig:"CONTRACT_INDEX_COLUMN"`
	ContractTenorColumn string `yaml:"contract_tenor_column" envconfig:"CONTRACT_TENOR_COLUMN"`
	TypicalFeColumn     string `yaml:"typical_fe_column" envconfig:"TYPICAL_FE_COLUMN"`
	FeAdjFlagColumn     string `yaml:"fe_adj_flag_column" envconfig:"FE_ADJ_FLAG_COLUMN"`
	CostColumn          string `yaml:"cost_column" envconfig:"COST_COLUMN"`
	DiscountColumn      string `yaml:"discount_column" envconfig:"DISCOUNT_COLUMN"`
	QuantityColumn      string `yaml:"quantity_column" envconfig:"QUANTITY_COLUMN"`
	UnitColumn          string `yaml:"unit_column" envconfig:"UNIT_COLUMN"`
	MoistureColumn      string `yaml:"moisture_column" envconfig:"MOISTURE_COLUMN"`

	ReportSheet      string `yaml:"report_sheet" envconfig:"REPORT_SHEET"`
	ReportDateColumn string `yaml:"report_date_column" envconfig:"REPORT_DATE_COLUMN"`
}

// Output column names appended to the contracts table.
const (
	ColumnBaseIndexPrice    = "Base Index Price"
	ColumnFeAdjustmentRatio = "Fe Adjustment Ratio"
	ColumnQuantityDMT       = "Quantity (DMT)"
	ColumnMTMValue          = "MTM Value"
)

// DefaultMTMConfig returns the column layout of the reference trading workbook.
func DefaultMTMConfig() MTMConfig {
	return MTMConfig{
		PriceSheet:          "Price",
		ContractsSheet:      "Contracts",
		PriceDateColumn:     "Price Date",
		PriceIndexColumn:    "Index Name",
		PriceTenorColumn:    "Tenor",
		PriceValueColumn:    "Price",
		ContractIDColumn:    "Contract_Ref",
		ContractIndexColumn: "Base Index",
		ContractTenorColumn: "Tenor",
		TypicalFeColumn:     "Typical Fe",
		FeAdjFlagColumn:     "Fe Adj Flag",
		CostColumn:          "Cost",
		DiscountColumn:      "Discount",
		QuantityColumn:      "Quantity",
		UnitColumn:          "Unit",
		MoistureColumn:      "Moisture",
		ReportSheet:         "MTM Report",
		ReportDateColumn:    "Valuation Date",
	}
}

// Validate checks that every sheet and column name is set.
func (c MTMConfig) Validate() error {
	return requireNames("mtm", map[string]string{
		"price_sheet":           c.PriceSheet,
		"contracts_sheet":       c.ContractsSheet,
		"price_date_column":     c.PriceDateColumn,
		"price_index_column":    c.PriceIndexColumn,
		"price_tenor_column":    c.PriceTenorColumn,
		"price_value_column":    c.PriceValueColumn,
		"contract_id_column":    c.ContractIDColumn,
		"contract_index_column": c.ContractIndexColumn,
		"contract_tenor_column": c.ContractTenorColumn,
		"typical_fe_column":     c.TypicalFeColumn,
		"quantity_column":       c.QuantityColumn,
		"report_sheet":          c.ReportSheet,
		"report_date_column":    c.ReportDateColumn,
	})
}

// WeatherConfig binds the precipitation workbook layout.
type WeatherConfig struct {
	DailySheet   string `yaml:"daily_sheet" envconfig:"DAILY_SHEET"`
	MonthlySheet string `yaml:"monthly_sheet" envconfig:"MONTHLY_SHEET"`

	DailyDateColumn     string `yaml:"daily_date_column" envconfig:"DAILY_DATE_COLUMN"`
	DailyStateColumn    string `yaml:"daily_state_column" envconfig:"DAILY_STATE_COLUMN"`
	DailyDistrictColumn string `yaml:"daily_district_column" envconfig:"DAILY_DISTRICT_COLUMN"`
	DailyPrecipColumn   string `yaml:"daily_precip_column" envconfig:"DAILY_PRECIP_COLUMN"`

	MonthlyYearColumn     string `yaml:"monthly_year_column" envconfig:"MONTHLY_YEAR_COLUMN"`
	MonthlyMonthColumn    string `yaml:"monthly_month_column" envconfig:"MONTHLY_MONTH_COLUMN"`
	MonthlyStateColumn    string `yaml:"monthly_state_column" envconfig:"MONTHLY_STATE_COLUMN"`
	MonthlyDistrictColumn string `yaml:"monthly_district_column" envconfig:"MONTHLY_DISTRICT_COLUMN"`
	MonthlyPrecipColumn   string `yaml:"monthly_precip_column" envconfig:"MONTHLY_PRECIP_COLUMN"`
}

// DefaultWeatherConfig returns the layout of the reference weather workbook.
func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{
		DailySheet:            "Daily",
		MonthlySheet:          "Monthly",
		DailyDateColumn:       "Date",
		DailyStateColumn:      "State",
		DailyDistrictColumn:   "District",
		DailyPrecipColumn:     "Daily Precipitation",
		MonthlyYearColumn:     "Year",
		MonthlyMonthColumn:    "Month",
		MonthlyStateColumn:    "State",
		MonthlyDistrictColumn: "District",
		MonthlyPrecipColumn:   "Monthly Precipitation",
	}
}

// Validate checks that every sheet and column name is set.
func (c WeatherConfig) Validate() error {
	return requireNames("weather", map[string]string{
		"daily_sheet":             c.DailySheet,
		"monthly_sheet":           c.MonthlySheet,
		"daily_date_column":       c.DailyDateColumn,
		"daily_state_column":      c.DailyStateColumn,
		"daily_district_column":   c.DailyDistrictColumn,
		"daily_precip_column":     c.DailyPrecipColumn,
		"monthly_year_column":     c.MonthlyYearColumn,
		"monthly_month_column":    c.MonthlyMonthColumn,
		"monthly_state_column":    c.MonthlyStateColumn,
		"monthly_district_column": c.MonthlyDistrictColumn,
		"monthly_precip_column":   c.MonthlyPrecipColumn,
	})
}

func requireNames(section string, names map[string]string) error {
	for key, value := range names {
		if value == "" {
			return fmt.Errorf("%s.%s must not be empty", section, key)
		}
	}
	return nil
}
