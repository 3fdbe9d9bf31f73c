package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting. Values load from a YAML file and may
// be overridden through environment variables afterwards.
type Config struct {
	Server struct {
		Addr               string `yaml:"addr"`
		ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec"`
	} `yaml:"server"`

	Kafka struct {
		Brokers    []string `yaml:"brokers"`
		Topic      string   `yaml:"topic"`
		IntervalMS int      `yaml:"interval_ms"`
	} `yaml:"kafka"`

	Journal struct {
		Dir         string `yaml:"dir"`
		SegmentSize int64  `yaml:"segment_size"`
	} `yaml:"journal"`

	Outbox struct {
		Dir string `yaml:"dir"`
	} `yaml:"outbox"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	// Custody seeds the in-memory ledger on startup: dev and test balances
	// plus operator allowances. A production deployment would point the
	// engine at an external custodian instead.
	Custody struct {
		Seed []SeedEntry `yaml:"seed"`
	} `yaml:"custody"`
}

type SeedEntry struct {
	Asset       string `yaml:"asset"`
	Participant string `yaml:"participant"`
	Balance     uint64 `yaml:"balance"`
	Allowance   uint64 `yaml:"allowance"`
}

// Load reads the YAML file at path, applies .env and environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeoutSec == 0 {
		c.Server.ShutdownTimeoutSec = 10
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "pairbook.events"
	}
	if c.Kafka.IntervalMS == 0 {
		c.Kafka.IntervalMS = 250
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "./data/journal"
	}
	if c.Journal.SegmentSize == 0 {
		c.Journal.SegmentSize = 4 << 20
	}
	if c.Outbox.Dir == "" {
		c.Outbox.Dir = "./data/outbox"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) overrideWithEnv() {
	if v := os.Getenv("PAIRBOOK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PAIRBOOK_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PAIRBOOK_KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("PAIRBOOK_JOURNAL_DIR"); v != "" {
		c.Journal.Dir = v
	}
	if v := os.Getenv("PAIRBOOK_OUTBOX_DIR"); v != "" {
		c.Outbox.Dir = v
	}
	if v := os.Getenv("PAIRBOOK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Journal.SegmentSize < 4096 {
		return fmt.Errorf("journal.segment_size %d is below the 4 KiB minimum", c.Journal.SegmentSize)
	}
	for i, s := range c.Custody.Seed {
		if s.Asset == "" || s.Participant == "" {
			return fmt.Errorf("custody.seed[%d]: asset and participant are required", i)
		}
	}
	return nil
}
