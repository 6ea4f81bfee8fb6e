package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Schedule struct {
		Timezone           string `yaml:"timezone"`
		BufferMinutes      int    `yaml:"buffer_minutes"`
		GranularityMinutes int    `yaml:"granularity_minutes"`
	} `yaml:"schedule"`

	HTTP struct {
		Port int `yaml:"port"`
	} `yaml:"http"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Telegram struct {
		BotToken string  `yaml:"bot_token"`
		ChatIDs  []int64 `yaml:"chat_ids"`
		Debug    bool    `yaml:"debug"`
	} `yaml:"telegram"`

	Reminders struct {
		Enabled        bool `yaml:"enabled"`
		LeadHours      int  `yaml:"lead_hours"`
		IntervalMin    int  `yaml:"interval_minutes"`
		RatePerSecond  int  `yaml:"rate_per_second"`
		RateBurstLimit int  `yaml:"rate_burst_limit"`
	} `yaml:"reminders"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
	} `yaml:"sheets"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/salonbook.db"
	}
	if cfg.Schedule.BufferMinutes <= 0 {
		cfg.Schedule.BufferMinutes = 30
	}
	if cfg.Schedule.GranularityMinutes <= 0 {
		cfg.Schedule.GranularityMinutes = 30
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) ReminderLead() time.Duration {
	if c.Reminders.LeadHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Reminders.LeadHours) * time.Hour
}

func (c *Config) ReminderInterval() time.Duration {
	if c.Reminders.IntervalMin <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Reminders.IntervalMin) * time.Minute
}
