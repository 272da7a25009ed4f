package config

import "github.com/klauspost/compress/flate"

type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Archive ArchiveConfig `yaml:"archive"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	History HistoryConfig `yaml:"history"`
}

// FeedConfig is the feed directory and the files expected in it.
type FeedConfig struct {
	Dir   string   `yaml:"dir"`
	Files []string `yaml:"files"`
}

// ArchiveConfig is the archive directory and its retention policy.
type ArchiveConfig struct {
	Dir              string `yaml:"dir"`
	RetentionDays    int    `yaml:"retentionDays"`
	CompressionLevel *int   `yaml:"compressionLevel"` // flate level, -2..9
}

type LoggingConfig struct {
	Path string `yaml:"path"` // append-only status log
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // Prometheus textfile output, optional
}

type HistoryConfig struct {
	Path string `yaml:"path"` // SQLite run ledger, optional
}

const (
	DefaultRetentionDays = 7
	DefaultLogPath       = "basic_checks.log"
)

// DefaultFiles is the reference feed: a customer, a supplier and an order file.
var DefaultFiles = []string{"customer.csv", "supplier.csv", "order.csv"}

// Default returns a config with every optional field filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if len(c.Feed.Files) == 0 {
		c.Feed.Files = append([]string(nil), DefaultFiles...)
	}
	if c.Logging.Path == "" {
		c.Logging.Path = DefaultLogPath
	}
	if c.Archive.CompressionLevel == nil {
		level := flate.DefaultCompression
		c.Archive.CompressionLevel = &level
	}
}

// Level returns the configured compression level.
func (a ArchiveConfig) Level() int {
	if a.CompressionLevel == nil {
		return flate.DefaultCompression
	}
	return *a.CompressionLevel
}
