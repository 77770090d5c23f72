package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalConfig = `
menu:
  path: menu.yaml
`

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != LogInfo {
		t.Errorf("log level = %q", cfg.Server.LogLevel)
	}
	if cfg.Menu.Source != MenuSourceFile {
		t.Errorf("menu source = %q", cfg.Menu.Source)
	}
	if cfg.Tax.Rate != 0.13 || cfg.Tax.Code != "HST" {
		t.Errorf("tax = %+v", cfg.Tax)
	}
	if cfg.POS.TimeoutSeconds != 30 || cfg.POS.FailureThreshold != 5 || cfg.POS.CooldownSeconds != 30 {
		t.Errorf("pos = %+v", cfg.POS)
	}
	if cfg.Transcript.PhoneticThreshold != 0.70 || cfg.Transcript.FuzzyThreshold != 0.85 {
		t.Errorf("transcript = %+v", cfg.Transcript)
	}
	if !cfg.Transcript.CorrectionEnabled() {
		t.Error("correction disabled by default")
	}
}

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromReader(strings.NewReader(`
server:
  listen_addr: ":9090"
  log_level: debug
menu:
  source: file
  path: configs/menu.yaml
  watch_interval: 60
tax:
  rate: 0.05
  code: GST
pos:
  base_url: https://pos.example.com
  api_key: secret
  timeout_seconds: 10
  failure_threshold: 3
  cooldown_seconds: 15
transcript:
  enabled: false
order_log:
  postgres_dsn: postgres://localhost/ordervox
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" || cfg.Server.LogLevel != LogDebug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Menu.WatchInterval != 60 {
		t.Errorf("watch interval = %d", cfg.Menu.WatchInterval)
	}
	if cfg.Tax.Rate != 0.05 || cfg.Tax.Code != "GST" {
		t.Errorf("tax = %+v", cfg.Tax)
	}
	if cfg.POS.BaseURL != "https://pos.example.com" || cfg.POS.FailureThreshold != 3 {
		t.Errorf("pos = %+v", cfg.POS)
	}
	if cfg.Transcript.CorrectionEnabled() {
		t.Error("correction enabled despite enabled: false")
	}
	if cfg.OrderLog.PostgresDSN != "postgres://localhost/ordervox" {
		t.Errorf("order log = %+v", cfg.OrderLog)
	}
}

func TestLoadFromReader_UnknownKeyRejected(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader(`
menu:
  path: menu.yaml
  colour: blue
`))
	if err == nil {
		t.Fatal("unknown key accepted")
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadFromReader_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing menu path",
			yaml:    "menu:\n  source: file\n",
			wantErr: "menu.path is required",
		},
		{
			name:    "postgres source without dsn",
			yaml:    "menu:\n  source: postgres\n",
			wantErr: "menu.postgres_dsn is required",
		},
		{
			name:    "invalid menu source",
			yaml:    "menu:\n  source: redis\n",
			wantErr: "menu.source",
		},
		{
			name:    "invalid log level",
			yaml:    "server:\n  log_level: verbose\nmenu:\n  path: menu.yaml\n",
			wantErr: "server.log_level",
		},
		{
			name:    "tax rate out of range",
			yaml:    "menu:\n  path: menu.yaml\ntax:\n  rate: 1.5\n  code: HST\n",
			wantErr: "tax.rate",
		},
		{
			name:    "tax rate without code",
			yaml:    "menu:\n  path: menu.yaml\ntax:\n  rate: 0.07\n  code: \"\"\n",
			wantErr: "tax.code is required",
		},
		{
			name:    "negative watch interval",
			yaml:    "menu:\n  path: menu.yaml\n  watch_interval: -5\n",
			wantErr: "menu.watch_interval",
		},
		{
			name:    "negative pos timeout",
			yaml:    "menu:\n  path: menu.yaml\npos:\n  timeout_seconds: -1\n",
			wantErr: "pos.timeout_seconds",
		},
		{
			name:    "transcript threshold out of range",
			yaml:    "menu:\n  path: menu.yaml\ntranscript:\n  phonetic_threshold: 1.5\n",
			wantErr: "transcript.phonetic_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("invalid config accepted")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	_, err := LoadFromReader(strings.NewReader(`
server:
  log_level: verbose
menu:
  source: redis
`))
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	for _, want := range []string{"server.log_level", "menu.source"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err %v missing %q", err, want)
		}
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(minimalConfig), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Menu.Path != "menu.yaml" {
		t.Errorf("menu path = %q", cfg.Menu.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestCorrectionEnabled(t *testing.T) {
	t.Parallel()

	var c TranscriptConfig
	if !c.CorrectionEnabled() {
		t.Error("nil enabled should mean on")
	}

	on, off := true, false
	c.Enabled = &on
	if !c.CorrectionEnabled() {
		t.Error("enabled: true should mean on")
	}
	c.Enabled = &off
	if c.CorrectionEnabled() {
		t.Error("enabled: false should mean off")
	}
}
