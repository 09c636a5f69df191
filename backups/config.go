package backups

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedsConfig maps each raw feed to a JSON file path. Empty paths are
// skipped; the pipeline runs with whatever feeds are present.
type FeedsConfig struct {
	Snapshots string `yaml:"snapshots"`
	Storage   string `yaml:"storage"`
	PBS       string `yaml:"pbs"`
	PMG       string `yaml:"pmg"`
	Guests    string `yaml:"guests"`
}

func (f FeedsConfig) empty() bool {
	return f.Snapshots == "" && f.Storage == "" && f.PBS == "" && f.PMG == ""
}

type FileConfig struct {
	// DB is the SQLite archive path used by ingest runs.
	DB string `yaml:"db"`

	Feeds FeedsConfig `yaml:"feeds"`

	// ChartDays is the default trailing window (7/30/90/365).
	ChartDays int `yaml:"chart_days"`

	Debug bool `yaml:"debug"`
}

func LoadConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
