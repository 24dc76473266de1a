// Package config loads application configuration and resolves file paths.
//
// # Configuration Sources
//
// Values are layered with later sources winning: Default(), then a YAML
// file (bhavcopy.yaml, configs/bhavcopy.yaml or an explicit path), then
// environment variables prefixed BHAV_. For example:
//
//	BHAV_SERVER_PORT=9090
//	BHAV_LOGGING_LEVEL=debug
//	BHAV_REPORT_EXCHANGES=A,B
//	BHAV_PATHS_BASE_DIR=/srv/bhavcopy
//	BHAV_FETCH_URL_A=https://mirror.example.com/EQ_ISINCODE_{ddmmyy}.zip
//
// # Path Management
//
// GetPaths resolves the downloads, reports and logs directories and the
// client registry file against a base directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	reportPath := paths.GetReportPath("(A) 15-01-2026.xlsx")
package config
