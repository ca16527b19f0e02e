// Package config provides configuration loading and management for sinorecon.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sinorecon/pkg/filter"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input parameters
	Input struct {
		// Path is the RGB sinogram image to reconstruct
		Path string `yaml:"path"`

		// Angles is the number of projection angles (image rows), 0 to infer
		Angles int `yaml:"angles"`

		// Samples is the number of detector samples (image columns), 0 to infer
		Samples int `yaml:"samples"`
	} `yaml:"input"`

	// Reconstruction parameters
	Reconstruction struct {
		// Filters lists the filters to reconstruct with, in order
		Filters []string `yaml:"filters"`

		// Compare names the two filters whose reconstructions are compared
		Compare []string `yaml:"compare"`
	} `yaml:"reconstruction"`

	// Output parameters
	Output struct {
		// Dir is the directory every output file is written to
		Dir string `yaml:"dir"`

		// OriginalName is the file name of the copy of the input sinogram
		OriginalName string `yaml:"originalName"`

		// SaveLaminograms writes the raw per-channel back-projections
		SaveLaminograms bool `yaml:"saveLaminograms"`

		// Plots renders laminograms and filter kernels with gonum/plot
		Plots bool `yaml:"plots"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default input parameters
	cfg.Input.Path = "sinogram.png"
	cfg.Input.Angles = 360
	cfg.Input.Samples = 658

	// Set default reconstruction parameters
	for _, kind := range filter.Kinds {
		cfg.Reconstruction.Filters = append(cfg.Reconstruction.Filters, kind.String())
	}
	cfg.Reconstruction.Compare = []string{filter.Hamming.String(), filter.Hann.String()}

	// Set default output parameters
	cfg.Output.Dir = "output"
	cfg.Output.OriginalName = "originalSinogramImage.png"
	cfg.Output.SaveLaminograms = false
	cfg.Output.Plots = false
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the shape parameters and filter names
func (c *Config) Validate() error {
	if c.Input.Angles < 0 || c.Input.Samples < 0 {
		return fmt.Errorf("angles and samples must not be negative, got %d and %d",
			c.Input.Angles, c.Input.Samples)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output directory must be set")
	}
	if len(c.Reconstruction.Filters) == 0 {
		return fmt.Errorf("at least one filter is required")
	}
	kinds, err := c.Filters()
	if err != nil {
		return err
	}
	a, b, ok, err := c.ComparePair()
	if err != nil {
		return err
	}
	if ok && (!contains(kinds, a) || !contains(kinds, b)) {
		return fmt.Errorf("compared filters %v and %v must both be reconstructed", a, b)
	}
	return nil
}

// Filters returns the configured filter kinds
func (c *Config) Filters() ([]filter.Kind, error) {
	kinds := make([]filter.Kind, 0, len(c.Reconstruction.Filters))
	for _, name := range c.Reconstruction.Filters {
		kind, err := filter.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// ComparePair returns the two filters to compare. ok is false when the
// compare list is empty, which disables the comparison.
func (c *Config) ComparePair() (a, b filter.Kind, ok bool, err error) {
	compare := c.Reconstruction.Compare
	if len(compare) == 0 {
		return filter.None, filter.None, false, nil
	}
	if len(compare) != 2 {
		return filter.None, filter.None, false, fmt.Errorf("compare needs exactly two filters, got %d", len(compare))
	}

	if a, err = filter.ParseKind(compare[0]); err != nil {
		return filter.None, filter.None, false, err
	}
	if b, err = filter.ParseKind(compare[1]); err != nil {
		return filter.None, filter.None, false, err
	}
	return a, b, true, nil
}

func contains(kinds []filter.Kind, kind filter.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
