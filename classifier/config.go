package classifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "tpa.yaml"

// Log backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// LogConfig selects where classifications are recorded.
type LogConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// WebshotConfig controls per-pulsar page capture.
type WebshotConfig struct {
	Dir         string        `yaml:"dir"`
	URLTemplate string        `yaml:"urlTemplate"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	Timeout     time.Duration `yaml:"timeout"`
	ThumbWidth  int           `yaml:"thumbWidth"`
}

// PlotConfig sizes the P-Pdot chart.
type PlotConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config aggregates runtime settings persisted to tpa.yaml.
type Config struct {
	Dataset   string        `yaml:"dataset"`
	Catalogue string        `yaml:"catalogue"`
	Taxonomy  string        `yaml:"taxonomy"`
	Username  string        `yaml:"username"`
	Log       LogConfig     `yaml:"log"`
	Webshots  WebshotConfig `yaml:"webshots"`
	Plot      PlotConfig    `yaml:"plot"`
	Logging   LoggingConfig `yaml:"logging"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Dataset == "" {
		c.Dataset = "tpa_data.csv"
	}
	if c.Taxonomy == "" {
		c.Taxonomy = "tags.txt"
	}
	c.Username = strings.TrimSpace(c.Username)
	c.Log.Backend = strings.ToLower(strings.TrimSpace(c.Log.Backend))
	switch c.Log.Backend {
	case BackendFile, BackendSQLite:
	default:
		c.Log.Backend = BackendFile
	}
	if c.Log.Path == "" {
		if c.Log.Backend == BackendSQLite {
			c.Log.Path = "classifications.db"
		} else {
			c.Log.Path = "classifications.log"
		}
	}
	if c.Webshots.Dir == "" {
		c.Webshots.Dir = "webshots"
	}
	if c.Webshots.URLTemplate == "" {
		c.Webshots.URLTemplate = "https://www.atnf.csiro.au/research/pulsar/psrcat/proc_form.php?version=2&JName=on&pulsar_names={jname}&ephemeris=long&submit_ephemeris=Get+Ephemeris&state=query"
	}
	if c.Webshots.Width <= 0 {
		c.Webshots.Width = 900
	}
	if c.Webshots.Height <= 0 {
		c.Webshots.Height = 600
	}
	if c.Webshots.Timeout <= 0 {
		c.Webshots.Timeout = 30 * time.Second
	}
	if c.Webshots.ThumbWidth <= 0 {
		c.Webshots.ThumbWidth = 450
	}
	if c.Plot.Width <= 0 {
		c.Plot.Width = 700
	}
	if c.Plot.Height <= 0 {
		c.Plot.Height = 500
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// WebshotURL expands the URL template for one pulsar.
func (c Config) WebshotURL(jname string) string {
	return strings.ReplaceAll(c.Webshots.URLTemplate, "{jname}", jname)
}

// LoadConfig loads configuration from path or tpa.yaml. A missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
