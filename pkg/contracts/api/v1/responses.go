package api

// MTMResponse is the JSON body returned by the valuation endpoint.
type MTMResponse struct {
	Rows []map[string]any `json:"rows"`
}

// WeatherAnswerResponse is the JSON body returned by the weather endpoint.
// Table is null when the question was not understood or nothing matched.
type WeatherAnswerResponse struct {
	Answer string           `json:"answer"`
	Intent string           `json:"intent"`
	Table  []map[string]any `json:"table"`
}

// HealthResponse is the JSON body returned by the health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}
