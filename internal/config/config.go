package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SilasRoe/raccolta-dati/internal/reconcile"
)

// Config represents the top-level raccolta.yaml configuration.
type Config struct {
	Ledger      LedgerConfig      `yaml:"ledger"`
	Corrections CorrectionsConfig `yaml:"corrections"`
	Archive     ArchiveConfig     `yaml:"archive"`
	RunLog      RunLogConfig      `yaml:"run_log"`
}

// LedgerConfig controls how the order book is located and read.
type LedgerConfig struct {
	// Path of the xlsx order book; can be overridden per invocation.
	Path string `yaml:"path,omitempty"`
	// MarkerLabel is the column-4 cell that identifies the header row.
	MarkerLabel string `yaml:"marker_label"`
}

// CorrectionsConfig locates the learned product rename table.
type CorrectionsConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig controls where processed source files are moved.
type ArchiveConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// RunLogConfig locates the per-run audit log.
type RunLogConfig struct {
	Path string `yaml:"path"`
}

// Load reads a raccolta.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the defaults a new setup needs.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

func (c *Config) fillDefaults() {
	if c.Ledger.MarkerLabel == "" {
		c.Ledger.MarkerLabel = reconcile.DefaultMarkerLabel
	}
	if c.Corrections.Path == "" {
		c.Corrections.Path = "corrections.json"
	}
	if c.RunLog.Path == "" {
		c.RunLog.Path = "runs.csv"
	}
}
