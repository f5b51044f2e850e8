package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOutput         = "nessus_grouped.xlsx"
	DefaultSheetName      = "Sheet1"
	DefaultMaxColumnWidth = 70
	DefaultMinSeverity    = 1
)

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

type Config struct {
	Output         string         `yaml:"output"`
	SheetName      string         `yaml:"sheet_name"`
	MaxColumnWidth int            `yaml:"max_column_width"`
	MinSeverity    int            `yaml:"min_severity"`
	Colors         map[int]string `yaml:"colors"`
}

// DefaultColors maps severities to row fill colors (RGB hex).
func DefaultColors() map[int]string {
	return map[int]string{
		4: "FF9999", // Critical
		3: "FFCC99", // High
		2: "FFFF99", // Medium
		1: "CCFFCC", // Low
	}
}

func Default() *Config {
	return &Config{
		Output:         DefaultOutput,
		SheetName:      DefaultSheetName,
		MaxColumnWidth: DefaultMaxColumnWidth,
		MinSeverity:    DefaultMinSeverity,
		Colors:         DefaultColors(),
	}
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nessus2xlsx", "config.yaml"), nil
}

// LoadConfig reads the config at path, or at the default location when path
// is empty. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	// Unset keys keep their default values.
	cfg := Default()
	cfg.Colors = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Colors == nil {
		cfg.Colors = DefaultColors()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, or to the default location when path is
// empty.
func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	if c.Output == "" {
		return errors.New("output must not be empty")
	}
	if c.SheetName == "" {
		return errors.New("sheet_name must not be empty")
	}
	if c.MaxColumnWidth < 1 {
		return fmt.Errorf("max_column_width must be positive, got %d", c.MaxColumnWidth)
	}
	if c.MinSeverity < 1 || c.MinSeverity > 4 {
		return fmt.Errorf("min_severity must be between 1 and 4, got %d", c.MinSeverity)
	}
	for sev, color := range c.Colors {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("color for severity %d must be 6 hex digits, got %q", sev, color)
		}
	}
	return nil
}
