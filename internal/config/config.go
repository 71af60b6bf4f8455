// Package config provides configuration loading for coverextract.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Text TextConfig `yaml:"txt"`
	PDF  PDFConfig  `yaml:"pdf"`
}

// TextConfig holds text cover settings.
type TextConfig struct {
	MaxLines int `yaml:"max_lines"`
	MaxChars int `yaml:"max_chars"`
	Width    int `yaml:"width"`
	Margin   int `yaml:"margin"`
}

// PDFConfig holds PDF rasterizer settings.
type PDFConfig struct {
	DPI      int           `yaml:"dpi"`
	Pdftoppm string        `yaml:"pdftoppm"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path and applies defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)
	cfg.PDF.Pdftoppm = expandPath(cfg.PDF.Pdftoppm, filepath.Dir(path))

	return &cfg, nil
}

// Validate rejects negative values.
func (c *Config) Validate() error {
	switch {
	case c.Text.MaxLines < 0:
		return fmt.Errorf("invalid txt.max_lines: %d", c.Text.MaxLines)
	case c.Text.MaxChars < 0:
		return fmt.Errorf("invalid txt.max_chars: %d", c.Text.MaxChars)
	case c.Text.Width < 0:
		return fmt.Errorf("invalid txt.width: %d", c.Text.Width)
	case c.Text.Margin < 0:
		return fmt.Errorf("invalid txt.margin: %d", c.Text.Margin)
	case c.PDF.DPI < 0:
		return fmt.Errorf("invalid pdf.dpi: %d", c.PDF.DPI)
	case c.PDF.Timeout < 0:
		return fmt.Errorf("invalid pdf.timeout: %s", c.PDF.Timeout)
	}
	return nil
}

// expandPath resolves paths starting with "./" against configDir. Bare
// command names are left for PATH lookup.
func expandPath(path string, configDir string) string {
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return filepath.Join(configDir, path)
	}
	return path
}
