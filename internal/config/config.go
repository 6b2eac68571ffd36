package config

import (
	"log"
	"time"

	"github.com/spf13/viper"

	"golang-admin-command-runner/pkg/database"
	"golang-admin-command-runner/pkg/ratelimit"
	"golang-admin-command-runner/pkg/redis"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Runner    RunnerConfig     `mapstructure:"runner"`
	RateLimit ratelimit.Config `mapstructure:"rate_limit"`
	Telegram  TelegramConfig   `mapstructure:"telegram"`
	Database  database.Config  `mapstructure:"database"`
	Redis     redis.Config     `mapstructure:"redis"`
	Log       LogConfig        `mapstructure:"log"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Port    string
	Env     string
	Version string
}

type RunnerConfig struct {
	// Timeout bounds one command run; zero waits for the command to return.
	Timeout          time.Duration
	MaxOutputBytes   int
	CatalogPath      string
	TerminationGrace time.Duration
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("VERSION", "dev")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DATABASE_DRIVER", database.DriverSQLite)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "admin_command_runner")
	v.SetDefault("DATABASE_SSL_MODE", "disable")
	v.SetDefault("DATABASE_TIME_ZONE", "UTC")
	v.SetDefault("DATABASE_PATH", "command_runner.db")
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_LOG_LEVEL", "Warn")
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_STREAM_COMMAND_RUNS", "admin:command_runs")

	v.SetDefault("RUNNER_TIMEOUT", 0)
	v.SetDefault("RUNNER_MAX_OUTPUT_BYTES", 1<<20)
	v.SetDefault("RUNNER_CATALOG_PATH", "")
	v.SetDefault("RUNNER_TERMINATION_GRACE", "5s")

	v.SetDefault("RATE_LIMIT_RUNS_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_CLEANUP_DURATION", "1m")
	v.SetDefault("RATE_LIMIT_EXPIRE_DURATION", "10m")

	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", "")
}

// LoadConfig reads .env from the working directory when present and lets
// environment variables override it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("Failed to read config file .env config try read from environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:    v.GetString("PORT"),
			Env:     v.GetString("ENV"),
			Version: v.GetString("VERSION"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Runner: RunnerConfig{
			Timeout:          v.GetDuration("RUNNER_TIMEOUT"),
			MaxOutputBytes:   v.GetInt("RUNNER_MAX_OUTPUT_BYTES"),
			CatalogPath:      v.GetString("RUNNER_CATALOG_PATH"),
			TerminationGrace: v.GetDuration("RUNNER_TERMINATION_GRACE"),
		},
		RateLimit: ratelimit.Config{
			RequestsPerMinute: v.GetInt("RATE_LIMIT_RUNS_PER_MINUTE"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
			CleanupDuration:   v.GetDuration("RATE_LIMIT_CLEANUP_DURATION"),
			ExpireDuration:    v.GetDuration("RATE_LIMIT_EXPIRE_DURATION"),
		},
		Telegram: TelegramConfig{
			BotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID:   v.GetString("TELEGRAM_CHAT_ID"),
		},
		Database: database.Config{
			Driver:          v.GetString("DATABASE_DRIVER"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			DBName:          v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSL_MODE"),
			TimeZone:        v.GetString("DATABASE_TIME_ZONE"),
			Path:            v.GetString("DATABASE_PATH"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetString("DATABASE_CONN_MAX_LIFETIME"),
			LogLevel:        v.GetString("DATABASE_LOG_LEVEL"),
			AutoMigrate:     v.GetBool("DATABASE_AUTO_MIGRATE"),
		},
		Redis: redis.Config{
			Enabled:          v.GetBool("REDIS_ENABLED"),
			Host:             v.GetString("REDIS_HOST"),
			Port:             v.GetInt("REDIS_PORT"),
			Password:         v.GetString("REDIS_PASSWORD"),
			DB:               v.GetInt("REDIS_DB"),
			PoolSize:         v.GetInt("REDIS_POOL_SIZE"),
			CommandRunStream: v.GetString("REDIS_STREAM_COMMAND_RUNS"),
		},
	}

	return config, nil
}
