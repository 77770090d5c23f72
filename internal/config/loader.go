package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values with their documented defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Menu.Source == "" {
		cfg.Menu.Source = MenuSourceFile
	}
	if cfg.Tax.Rate == 0 && cfg.Tax.Code == "" {
		cfg.Tax.Rate = 0.13
		cfg.Tax.Code = "HST"
	}
	if cfg.POS.TimeoutSeconds == 0 {
		cfg.POS.TimeoutSeconds = 30
	}
	if cfg.POS.FailureThreshold == 0 {
		cfg.POS.FailureThreshold = 5
	}
	if cfg.POS.CooldownSeconds == 0 {
		cfg.POS.CooldownSeconds = 30
	}
	if cfg.Transcript.PhoneticThreshold == 0 {
		cfg.Transcript.PhoneticThreshold = 0.70
	}
	if cfg.Transcript.FuzzyThreshold == 0 {
		cfg.Transcript.FuzzyThreshold = 0.85
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	switch {
	case !cfg.Menu.Source.IsValid():
		errs = append(errs, fmt.Errorf("menu.source %q is invalid; valid values: file, postgres", cfg.Menu.Source))
	case cfg.Menu.Source == MenuSourceFile && cfg.Menu.Path == "":
		errs = append(errs, errors.New("menu.path is required when menu.source is file"))
	case cfg.Menu.Source == MenuSourcePostgres && cfg.Menu.PostgresDSN == "":
		errs = append(errs, errors.New("menu.postgres_dsn is required when menu.source is postgres"))
	}
	if cfg.Menu.WatchInterval < 0 {
		errs = append(errs, fmt.Errorf("menu.watch_interval %d must not be negative", cfg.Menu.WatchInterval))
	}
	if cfg.Menu.Source == MenuSourcePostgres && cfg.Menu.WatchInterval > 0 {
		slog.Warn("menu.watch_interval is only supported for the file source; ignoring")
	}

	if cfg.Tax.Rate < 0 || cfg.Tax.Rate >= 1 {
		errs = append(errs, fmt.Errorf("tax.rate %.4f is out of range [0, 1)", cfg.Tax.Rate))
	}
	if cfg.Tax.Rate > 0 && cfg.Tax.Code == "" {
		errs = append(errs, errors.New("tax.code is required when tax.rate is set"))
	}

	if cfg.POS.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("pos.timeout_seconds %d must not be negative", cfg.POS.TimeoutSeconds))
	}
	if cfg.POS.FailureThreshold < 0 {
		errs = append(errs, fmt.Errorf("pos.failure_threshold %d must not be negative", cfg.POS.FailureThreshold))
	}
	if cfg.POS.CooldownSeconds < 0 {
		errs = append(errs, fmt.Errorf("pos.cooldown_seconds %d must not be negative", cfg.POS.CooldownSeconds))
	}
	if cfg.POS.BaseURL == "" {
		slog.Warn("pos.base_url is empty; orders will be accepted locally without an upstream call")
	}

	if cfg.Transcript.PhoneticThreshold < 0 || cfg.Transcript.PhoneticThreshold > 1 {
		errs = append(errs, fmt.Errorf("transcript.phonetic_threshold %.2f is out of range [0, 1]", cfg.Transcript.PhoneticThreshold))
	}
	if cfg.Transcript.FuzzyThreshold < 0 || cfg.Transcript.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("transcript.fuzzy_threshold %.2f is out of range [0, 1]", cfg.Transcript.FuzzyThreshold))
	}

	return errors.Join(errs...)
}
