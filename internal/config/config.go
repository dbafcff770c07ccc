// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Spin     SpinConfig     `mapstructure:"spin"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token    string `mapstructure:"token"`
	Username string `mapstructure:"username"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds the static admin allow-list.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// SpinConfig holds spin reward configuration.
type SpinConfig struct {
	Cooldown        time.Duration `mapstructure:"cooldown"`
	RewardMin       int           `mapstructure:"reward_min"`
	RewardMax       int           `mapstructure:"reward_max"`
	StreakBonusStep int64         `mapstructure:"streak_bonus_step"`
	BonusChance     float64       `mapstructure:"bonus_chance"`
}

// ReminderConfig holds the daily reminder schedule.
type ReminderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	At      string `mapstructure:"at"` // "HH:MM" local time
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, ADMIN_IDS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional - env vars can provide all config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "spinbot")
	v.SetDefault("database.name", "spinbot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Spin defaults
	v.SetDefault("spin.cooldown", "1h")
	v.SetDefault("spin.reward_min", 1)
	v.SetDefault("spin.reward_max", 100)
	v.SetDefault("spin.streak_bonus_step", 10)
	v.SetDefault("spin.bonus_chance", 0.1)

	// Reminder defaults
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.at", "09:00")
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ReminderTime parses the reminder.at value into hour and minute.
func (c *Config) ReminderTime() (hour, minute int, err error) {
	parts := strings.SplitN(c.Reminder.At, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid reminder time %q, want HH:MM", c.Reminder.At)
	}
	if _, err := fmt.Sscanf(c.Reminder.At, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q: %w", c.Reminder.At, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("reminder time %q out of range", c.Reminder.At)
	}
	return hour, minute, nil
}
