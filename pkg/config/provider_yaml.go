package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*Data, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Source      string `yaml:"source"`
		Destination string `yaml:"destination"`
		Catalog     string `yaml:"catalog,omitempty"`
		Workers     int    `yaml:"workers,omitempty"`
		Correction  struct {
			BackgroundToleranceSeconds float64 `yaml:"background_tolerance_seconds,omitempty"`
			SNRThreshold               float64 `yaml:"snr_threshold,omitempty"`
			MinAzimuthSpreadDegrees    float64 `yaml:"min_azimuth_spread_degrees,omitempty"`
			MinBeams                   int     `yaml:"min_beams,omitempty"`
		} `yaml:"correction,omitempty"`
		Downsample struct {
			Enabled       *bool `yaml:"enabled,omitempty"`
			MaxGates      int   `yaml:"max_gates,omitempty"`
			TruncateGates int   `yaml:"truncate_gates,omitempty"`
			TargetGates   int   `yaml:"target_gates,omitempty"`
		} `yaml:"downsample,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	if yamlConfig.Source == "" {
		return nil, fmt.Errorf("config %s: 'source' is required", y.filename)
	}
	if yamlConfig.Destination == "" {
		return nil, fmt.Errorf("config %s: 'destination' is required", y.filename)
	}

	// Convert to our internal format, filling unset values with defaults
	config := Defaults()
	config.Source = yamlConfig.Source
	config.Destination = yamlConfig.Destination
	config.Catalog = yamlConfig.Catalog
	if yamlConfig.Workers > 0 {
		config.Workers = yamlConfig.Workers
	}
	if v := yamlConfig.Correction.BackgroundToleranceSeconds; v > 0 {
		config.Correction.BackgroundToleranceSeconds = v
	}
	if v := yamlConfig.Correction.SNRThreshold; v > 0 {
		config.Correction.SNRThreshold = v
	}
	if v := yamlConfig.Correction.MinAzimuthSpreadDegrees; v > 0 {
		config.Correction.MinAzimuthSpreadDegrees = v
	}
	if v := yamlConfig.Correction.MinBeams; v > 0 {
		config.Correction.MinBeams = v
	}
	if yamlConfig.Downsample.Enabled != nil {
		config.Downsample.Enabled = *yamlConfig.Downsample.Enabled
	}
	if v := yamlConfig.Downsample.MaxGates; v > 0 {
		config.Downsample.MaxGates = v
	}
	if v := yamlConfig.Downsample.TruncateGates; v > 0 {
		config.Downsample.TruncateGates = v
	}
	if v := yamlConfig.Downsample.TargetGates; v > 0 {
		config.Downsample.TargetGates = v
	}

	return config, nil
}

// Defaults returns a configuration populated with the deployed defaults for
// everything except the source and destination roots.
func Defaults() *Data {
	return &Data{
		Workers: 4,
		Correction: CorrectionData{
			BackgroundToleranceSeconds: 900,
			SNRThreshold:               0.005,
			MinAzimuthSpreadDegrees:    20,
			MinBeams:                   3,
		},
		Downsample: DownsampleData{
			Enabled:       true,
			MaxGates:      201,
			TruncateGates: 3000,
			TargetGates:   500,
		},
	}
}
