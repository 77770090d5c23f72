// Package config provides the configuration schema and loader for the
// Ordervox order service.
package config

// LogLevel controls log verbosity for the Ordervox server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// MenuSource selects where the menu catalog is loaded from.
type MenuSource string

const (
	// MenuSourceFile loads the menu from a YAML file on disk.
	MenuSourceFile MenuSource = "file"

	// MenuSourcePostgres loads the menu from a PostgreSQL database.
	MenuSourcePostgres MenuSource = "postgres"
)

// IsValid reports whether s is a recognised menu source.
func (s MenuSource) IsValid() bool {
	return s == MenuSourceFile || s == MenuSourcePostgres
}

// Config is the root configuration structure for Ordervox.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Menu       MenuConfig       `yaml:"menu"`
	Tax        TaxConfig        `yaml:"tax"`
	POS        POSConfig        `yaml:"pos"`
	Transcript TranscriptConfig `yaml:"transcript"`
	OrderLog   OrderLogConfig   `yaml:"order_log"`
}

// ServerConfig holds network and logging settings for the Ordervox server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// MenuConfig selects and configures the menu catalog source.
type MenuConfig struct {
	// Source picks between a YAML file and PostgreSQL. Default: file.
	Source MenuSource `yaml:"source"`

	// Path is the menu YAML file, required when Source is file.
	Path string `yaml:"path"`

	// PostgresDSN is the database connection string, required when Source
	// is postgres.
	PostgresDSN string `yaml:"postgres_dsn"`

	// WatchInterval is the polling interval in seconds for menu file
	// hot-reload. Zero disables watching. Only meaningful for the file
	// source.
	WatchInterval int `yaml:"watch_interval"`
}

// TaxConfig describes the sales tax applied to every order.
type TaxConfig struct {
	// Rate is the fractional tax rate (e.g., 0.13 for 13%).
	Rate float64 `yaml:"rate"`

	// Code is the tax code reported on order documents (e.g., "HST").
	Code string `yaml:"code"`
}

// POSConfig configures the upstream order-management API client.
type POSConfig struct {
	// BaseURL is the API root (e.g., "https://pos.example.com/api/v1").
	// When empty, submitted orders are accepted locally without an
	// upstream call.
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer token sent with every request.
	APIKey string `yaml:"api_key"`

	// TimeoutSeconds is the per-request HTTP timeout. Default: 30.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// FailureThreshold is the number of consecutive failures before the
	// circuit breaker opens. Default: 5.
	FailureThreshold int `yaml:"failure_threshold"`

	// CooldownSeconds is how long the breaker stays open before probing.
	// Default: 30.
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

// TranscriptConfig tunes the phonetic repair of transcribed item phrases.
type TranscriptConfig struct {
	// Enabled turns transcript correction on. Default: true.
	// Uses a pointer so an absent key is distinguishable from false.
	Enabled *bool `yaml:"enabled"`

	// PhoneticThreshold is the minimum phonetic overlap for a candidate
	// to be considered, in [0, 1]. Default: 0.70.
	PhoneticThreshold float64 `yaml:"phonetic_threshold"`

	// FuzzyThreshold is the minimum string similarity for a correction to
	// be applied, in [0, 1]. Default: 0.85.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// CorrectionEnabled reports whether transcript correction is on,
// defaulting to true when unset.
func (t TranscriptConfig) CorrectionEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// OrderLogConfig configures the order submission log.
type OrderLogConfig struct {
	// PostgresDSN is the database connection string. When empty, the log
	// is kept in memory.
	PostgresDSN string `yaml:"postgres_dsn"`
}
