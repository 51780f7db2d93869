// Package config loads the application configuration with viper: a json
// config file overlaid by JOBDECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Embedder  EmbedderConfig  `mapstructure:"embedder"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Query     QueryConfig     `mapstructure:"query"`
}

type GeneralConfig struct {
	Listen    string `mapstructure:"listen"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Env       string `mapstructure:"env"` // "prod" enables secure cookies
}

type DatabasesConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN resolves the connection string, preferring an explicit URL.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (databases.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EmbedderConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NotifyConfig struct {
	Channel      string        `mapstructure:"channel"`
	MinReconnect time.Duration `mapstructure:"min_reconnect"`
	MaxReconnect time.Duration `mapstructure:"max_reconnect"`
	Buffer       int           `mapstructure:"buffer"`
}

type QueryConfig struct {
	IvfflatProbes int `mapstructure:"ivfflat_probes"`
}

// LoadConfig reads config.json from path (or the working directory) and
// applies environment overrides such as JOBDECK_GENERAL_JWT_SECRET.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	if path != "" {
		viper.AddConfigPath(path)
	}
	viper.AddConfigPath(".")

	viper.SetDefault("general.listen", ":8080")
	viper.SetDefault("general.env", "dev")
	viper.SetDefault("databases.postgres.sslmode", "disable")
	viper.SetDefault("embedder.base_url", "http://localhost:8000")
	viper.SetDefault("embedder.timeout", 30*time.Second)
	viper.SetDefault("notify.channel", "new_job")
	viper.SetDefault("notify.min_reconnect", time.Second)
	viper.SetDefault("notify.max_reconnect", time.Minute)
	viper.SetDefault("notify.buffer", 16)
	viper.SetDefault("query.ivfflat_probes", 10)

	viper.SetEnvPrefix("JOBDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// no config file is fine; env and defaults carry everything
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Databases.Postgres.URL == "" {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			cfg.Databases.Postgres.URL = url
		}
	}
	return &cfg, nil
}
