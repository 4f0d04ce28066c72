// Package api contains the HTTP contract definitions for sheetcalc.
// Version v1 represents the current stable API version.
package api

// Trading API Requests

// MTMRequest carries the form fields sent alongside an uploaded workbook.
// ValuationDate is parsed by the engine so malformed dates surface as data
// format errors rather than validation errors.
type MTMRequest struct {
	ValuationDate string `json:"valuation_date" form:"valuation_date" validate:"omitempty,max=40"`
	Format        string `json:"format" form:"format" validate:"omitempty,oneof=json xlsx csv pdf"`
}

// Weather API Requests

// WeatherQuestionRequest carries the question sent alongside a weather workbook.
type WeatherQuestionRequest struct {
	Question string `json:"question" form:"question" validate:"required"`
}
