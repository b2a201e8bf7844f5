package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the kbridge server.
type Config struct {
	Server  Server  `yaml:"server"`
	Broker  Broker  `yaml:"broker"`
	Alpaca  Alpaca  `yaml:"alpaca"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Broker selects and parameterizes the brokerage backend. CashComponents
// names the broker-specific cash fields summed into the balance figure; the
// list is configuration because its semantics differ per broker and account
// type.
type Broker struct {
	Name           string   `yaml:"name"` // "alpaca" or "simulator"
	CashComponents []string `yaml:"cash_components"`
	QuoteTimeout   string   `yaml:"quote_timeout"` // e.g. "5s"
}

// QuoteTimeoutDuration parses the configured quote timeout, defaulting to
// five seconds.
func (b Broker) QuoteTimeoutDuration() (time.Duration, error) {
	if b.QuoteTimeout == "" {
		return 5 * time.Second, nil
	}
	d, err := time.ParseDuration(b.QuoteTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing quote_timeout %q: %w", b.QuoteTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("quote_timeout %q must be positive", b.QuoteTimeout)
	}
	return d, nil
}

// Alpaca holds credentials and endpoints for the Alpaca backend.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Storage holds paths for the order journal and quote archive. Empty paths
// disable the corresponding store.
type Storage struct {
	JournalPath string `yaml:"journal_path"`
	ArchiveDir  string `yaml:"archive_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5432
	}
	if cfg.Broker.Name == "" {
		cfg.Broker.Name = "simulator"
	}
	if len(cfg.Broker.CashComponents) == 0 {
		cfg.Broker.CashComponents = []string{"cash"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KBRIDGE_BROKER"); v != "" {
		cfg.Broker.Name = v
	}
	if v := os.Getenv("KBRIDGE_JOURNAL_PATH"); v != "" {
		cfg.Storage.JournalPath = v
	}
	if v := os.Getenv("KBRIDGE_ARCHIVE_DIR"); v != "" {
		cfg.Storage.ArchiveDir = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars take highest priority (canonical SDK names).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
