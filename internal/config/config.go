package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. BHAV_SERVER_PORT.
const EnvPrefix = "BHAV"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Fetch     FetchConfig     `yaml:"fetch" envconfig:"FETCH"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system locations. Relative entries resolve
// against BaseDir, which itself defaults to the working directory.
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DownloadsDir string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	RegistryFile string `yaml:"registry_file" envconfig:"REGISTRY_FILE"`
}

// ReportConfig selects which exchanges a run covers by default.
type ReportConfig struct {
	Exchanges []string `yaml:"exchanges" envconfig:"EXCHANGES"`
}

// FetchConfig configures bhavcopy retrieval. URL templates accept the
// placeholders {ddmmyy}, {dd}, {mm}, {yy}, {yyyy} and {MON}.
type FetchConfig struct {
	URLA              string        `yaml:"url_a" envconfig:"URL_A"`
	URLB              string        `yaml:"url_b" envconfig:"URL_B"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	UserAgent         string        `yaml:"user_agent" envconfig:"USER_AGENT"`
	// ExtraHosts are accepted as custom URL hosts over HTTP in addition to
	// the hosts of URLA and URLB.
	ExtraHosts        []string      `yaml:"extra_hosts" envconfig:"EXTRA_HOSTS"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	// TraceExporter is "none" or "stdout".
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
}

// Load builds the configuration from defaults, then the YAML file at
// configFile (if non-empty and present), then BHAV_* environment variables.
// Later sources win.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the first config file found in the usual places.
func getConfigFilePath() string {
	for _, location := range []string{"bhavcopy.yaml", "configs/bhavcopy.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// ExchangeList parses Report.Exchanges.
func (c *Config) ExchangeList() ([]domain.Exchange, error) {
	out := make([]domain.Exchange, 0, len(c.Report.Exchanges))
	for _, s := range c.Report.Exchanges {
		ex, err := domain.ParseExchange(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

// URLTemplates returns the source URL template per exchange.
func (c *Config) URLTemplates() map[domain.Exchange]string {
	return map[domain.Exchange]string{
		domain.ExchangeA: c.Fetch.URLA,
		domain.ExchangeB: c.Fetch.URLB,
	}
}

// SourceHosts returns the hosts bhavcopies may be fetched from: those of
// the URL templates plus Fetch.ExtraHosts, lower-cased and deduplicated.
func (c *Config) SourceHosts() []string {
	seen := make(map[string]bool)
	var hosts []string
	add := func(h string) {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && !seen[h] {
			seen[h] = true
			hosts = append(hosts, h)
		}
	}
	for _, tmpl := range []string{c.Fetch.URLA, c.Fetch.URLB} {
		if u, err := url.Parse(tmpl); err == nil {
			add(u.Hostname())
		}
	}
	for _, h := range c.Fetch.ExtraHosts {
		add(h)
	}
	return hosts
}

// SlogLevel maps Logging.Level onto a slog level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive rps and burst")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}

	exchanges, err := c.ExchangeList()
	if err != nil {
		return err
	}
	if len(exchanges) == 0 {
		return fmt.Errorf("at least one exchange must be configured")
	}
	templates := c.URLTemplates()
	for _, ex := range exchanges {
		if templates[ex] == "" {
			return fmt.Errorf("no source URL configured for exchange %s", ex)
		}
	}

	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("invalid trace exporter: %q", c.Telemetry.TraceExporter)
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "bhavcopy.log",
		},
		Paths: PathsConfig{
			DownloadsDir: DefaultDownloadsDir,
			ReportsDir:   DefaultReportsDir,
			LogsDir:      DefaultLogsDir,
			RegistryFile: DefaultRegistryFile,
		},
		Report: ReportConfig{
			Exchanges: []string{string(domain.ExchangeA)},
		},
		Fetch: FetchConfig{
			URLA:              DefaultURLA,
			URLB:              DefaultURLB,
			RequestsPerSecond: 1,
			Timeout:           DefaultHTTPTimeout,
			UserAgent:         AppName + "/" + contracts.Version,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "bhavcopy",
			MetricsEnabled: true,
			TraceExporter:  "none",
		},
	}
}
