// Package config provides centralized configuration management for sheetcalc.
// It loads settings from multiple sources, validates them and exposes typed
// structs to the rest of the application.
//
// # Configuration Sources
//
// Sources are layered, later ones overriding earlier ones:
//
//	1. Default values (Default)
//	2. YAML file (SHEETCALC_CONFIG, config.yaml or configs/config.yaml)
//	3. .env file (SHEETCALC_ENV_FILE or .env)
//	4. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SHEETCALC_<SECTION>_<KEY>:
//
//	SHEETCALC_SERVER_PORT=8000
//	SHEETCALC_LOGGING_LEVEL=debug
//	SHEETCALC_REPORTS_SCHEDULE="0 6 * * *"
//	SHEETCALC_MTM_PRICE_SHEET=Prices
//
// # Workbook Layouts
//
// MTMConfig and WeatherConfig map logical fields onto sheet and column
// names. They are plain values handed to the engines at construction, so
// alternate layouts can be tested without touching global state.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
