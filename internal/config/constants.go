package config

import "time"

const (
	AppName = "bhavcopy"

	DefaultPort           = 8080
	DefaultRateLimit      = 10 // requests per second
	DefaultBurstSize      = 20
	DefaultHTTPTimeout    = 60 * time.Second
	DefaultRequestTimeout = 5 * time.Minute

	DefaultDownloadsDir = "downloads"
	DefaultReportsDir   = "reports"
	DefaultLogsDir      = "logs"
	DefaultRegistryFile = "Clients.txt"

	DefaultURLA = "https://www.bseindia.com/download/BhavCopy/Equity/EQ_ISINCODE_{ddmmyy}.zip"
	DefaultURLB = "https://archives.nseindia.com/content/historical/EQUITIES/{yyyy}/{MON}/cm{dd}{MON}{yyyy}bhav.csv.zip"
)
