package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Create a temporary YAML config file.
	yamlContent := []byte(`
server:
  host: "0.0.0.0"
  port: 5432
broker:
  name: "simulator"
  cash_components: ["cash", "buying_power"]
  quote_timeout: "3s"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  base_url: "https://paper-api.alpaca.markets"
  data_url: "https://data.alpaca.markets"
storage:
  journal_path: "/tmp/kbridge/orders.db"
  archive_dir: "/tmp/kbridge/archive"
logging:
  level: "info"
  format: "json"
`)

	tmpFile, err := os.CreateTemp("", "kbridge-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("ALPACA_API_KEY")
	os.Unsetenv("ALPACA_API_SECRET")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	os.Unsetenv("KBRIDGE_BROKER")
	os.Unsetenv("KBRIDGE_JOURNAL_PATH")
	os.Unsetenv("KBRIDGE_ARCHIVE_DIR")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Server --
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 5432 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 5432)
	}

	// -- Broker --
	if cfg.Broker.Name != "simulator" {
		t.Errorf("Broker.Name = %q, want %q", cfg.Broker.Name, "simulator")
	}
	if len(cfg.Broker.CashComponents) != 2 || cfg.Broker.CashComponents[0] != "cash" {
		t.Errorf("Broker.CashComponents = %v, want [cash buying_power]", cfg.Broker.CashComponents)
	}
	d, err := cfg.Broker.QuoteTimeoutDuration()
	if err != nil {
		t.Fatalf("QuoteTimeoutDuration() returned error: %v", err)
	}
	if d != 3*time.Second {
		t.Errorf("QuoteTimeoutDuration() = %v, want 3s", d)
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
	if cfg.Alpaca.BaseURL != "https://paper-api.alpaca.markets" {
		t.Errorf("Alpaca.BaseURL = %q, want %q", cfg.Alpaca.BaseURL, "https://paper-api.alpaca.markets")
	}

	// -- Storage --
	if cfg.Storage.JournalPath != "/tmp/kbridge/orders.db" {
		t.Errorf("Storage.JournalPath = %q, want %q", cfg.Storage.JournalPath, "/tmp/kbridge/orders.db")
	}
	if cfg.Storage.ArchiveDir != "/tmp/kbridge/archive" {
		t.Errorf("Storage.ArchiveDir = %q, want %q", cfg.Storage.ArchiveDir, "/tmp/kbridge/archive")
	}

	// -- Logging --
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "kbridge-config-min-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.Write([]byte("server:\n  host: \"127.0.0.1\"\n")); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Unsetenv("KBRIDGE_BROKER")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 5432 {
		t.Errorf("Server.Port = %d, want default 5432", cfg.Server.Port)
	}
	if cfg.Broker.Name != "simulator" {
		t.Errorf("Broker.Name = %q, want default simulator", cfg.Broker.Name)
	}
	if len(cfg.Broker.CashComponents) != 1 || cfg.Broker.CashComponents[0] != "cash" {
		t.Errorf("Broker.CashComponents = %v, want default [cash]", cfg.Broker.CashComponents)
	}
	d, err := cfg.Broker.QuoteTimeoutDuration()
	if err != nil {
		t.Fatalf("QuoteTimeoutDuration() returned error: %v", err)
	}
	if d != 5*time.Second {
		t.Errorf("QuoteTimeoutDuration() = %v, want default 5s", d)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
broker:
  name: "alpaca"
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
`)

	tmpFile, err := os.CreateTemp("", "kbridge-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	// Set environment overrides.
	os.Setenv("ALPACA_API_KEY", "env-key")
	os.Setenv("KBRIDGE_BROKER", "simulator")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	defer os.Unsetenv("ALPACA_API_KEY")
	defer os.Unsetenv("KBRIDGE_BROKER")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Broker.Name != "simulator" {
		t.Errorf("Broker.Name = %q, want %q (env override)", cfg.Broker.Name, "simulator")
	}
}

func TestQuoteTimeoutDurationRejectsBadValues(t *testing.T) {
	for _, v := range []string{"nope", "-2s", "0s"} {
		b := Broker{QuoteTimeout: v}
		if _, err := b.QuoteTimeoutDuration(); err == nil {
			t.Errorf("QuoteTimeoutDuration(%q) = nil error, want failure", v)
		}
	}
}
