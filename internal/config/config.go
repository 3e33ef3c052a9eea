package config

import (
	"os"
	"strconv"
	"time"

	"grantpilot/pkg/config"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type DashboardConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type WorkerConfig struct {
	OutboxInterval     time.Duration `yaml:"outbox_interval"`
	OutboxBatchSize    int           `yaml:"outbox_batch_size"`
	OutboxMaxRetries   int           `yaml:"outbox_max_retries"`
	ReminderInterval   time.Duration `yaml:"reminder_interval"`
	ReminderWindowDays int           `yaml:"reminder_window_days"`
	SweeperQueue       string        `yaml:"sweeper_queue"`
}

type Config struct {
	Env       string              `yaml:"env"`
	LogLevel  string              `yaml:"log_level"`
	APIURL    string              `yaml:"api_url"`
	Store     StoreConfig         `yaml:"store"`
	DB        config.DBConfig     `yaml:"db"`
	Redis     config.RedisConfig  `yaml:"redis"`
	MQ        config.MQConfig     `yaml:"mq"`
	Server    config.ServerConfig `yaml:"server"`
	Oracle    config.OracleConfig `yaml:"oracle"`
	OTel      config.OTelConfig   `yaml:"otel"`
	Dashboard DashboardConfig     `yaml:"dashboard"`
	Worker    WorkerConfig        `yaml:"worker"`
}

// Load reads path (CONFIG_PATH, then config.yaml when empty), applies
// environment overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = config.GetEnv("CONFIG_PATH", "config.yaml")
	}

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := config.Load(path, os.Getenv("APP_ENV"), &cfg); err != nil {
			return nil, err
		}
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideOracleFromEnv(&cfg.Oracle)
	config.OverrideOTelFromEnv(&cfg.OTel)
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if url := os.Getenv("GRANTPILOT_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if days := os.Getenv("REMINDER_WINDOW_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			cfg.Worker.ReminderWindowDays = n
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverPostgres
	}
	if c.Server.Port == "" {
		c.Server.Port = "8001"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.APIURL == "" {
		c.APIURL = "http://localhost:" + c.Server.Port
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 60 * time.Second
	}
	if c.Dashboard.CacheTTL == 0 {
		c.Dashboard.CacheTTL = 30 * time.Second
	}
	if c.Worker.OutboxInterval == 0 {
		c.Worker.OutboxInterval = time.Second
	}
	if c.Worker.OutboxBatchSize == 0 {
		c.Worker.OutboxBatchSize = 100
	}
	if c.Worker.OutboxMaxRetries == 0 {
		c.Worker.OutboxMaxRetries = 5
	}
	if c.Worker.ReminderInterval == 0 {
		c.Worker.ReminderInterval = time.Hour
	}
	if c.Worker.ReminderWindowDays == 0 {
		c.Worker.ReminderWindowDays = 7
	}
	if c.Worker.SweeperQueue == "" {
		c.Worker.SweeperQueue = "grantpilot.grant_deleted.sweeper"
	}
}
