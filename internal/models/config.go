package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString renders the keyword/value DSN understood by pgx.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type GeneratorConfig struct {
	Count      int       `mapstructure:"count"`
	Stores     []string  `mapstructure:"stores"`
	StartDate  time.Time `mapstructure:"start_date"`
	EndDate    time.Time `mapstructure:"end_date"`
	CancelRate float64   `mapstructure:"cancel_rate"`
	Seed       int64     `mapstructure:"seed"`
	MinMinutes int       `mapstructure:"min_minutes"`
	MaxMinutes int       `mapstructure:"max_minutes"`
}

type Config struct {
	OrdersSource    string `mapstructure:"orders_source"`
	Timezone        string `mapstructure:"timezone"`
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`
	Grouping        string `mapstructure:"grouping"`
	Store           string `mapstructure:"store"`
	IncludeCanceled bool   `mapstructure:"include_canceled"`

	OutputFormat      string             `mapstructure:"output_format"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	KafkaTopicPrefix string `mapstructure:"kafka_topic_prefix"`

	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Generator GeneratorConfig `mapstructure:"generator"`
}

// Location resolves the timezone orders are bucketed in. Empty means UTC.
func (cfg *Config) Location() (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// StoreFilter returns nil when no store is selected.
func (cfg *Config) StoreFilter() *string {
	if cfg.Store == "" {
		return nil
	}
	s := cfg.Store
	return &s
}

func setDefaults() {
	viper.SetDefault("orders_source", "data/orders.json")
	viper.SetDefault("timezone", "UTC")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("grouping", string(GroupingDay))
	viper.SetDefault("store", "")
	viper.SetDefault("include_canceled", false)

	viper.SetDefault("output_format", "console")
	viper.SetDefault("output_path", "output")
	viper.SetDefault("output_folder", "reports")
	viper.SetDefault("output_destination", "local")
	viper.SetDefault("cloud_storage.provider", "s3")
	viper.SetDefault("cloud_storage.region", "eu-central-1")
	viper.SetDefault("cloud_storage.bucket_name", "")

	viper.SetDefault("kafka_enabled", false)
	viper.SetDefault("kafka_broker_list", "localhost:9092")
	viper.SetDefault("kafka_topic_prefix", "orderpulse.")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "orderpulse")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.cache_ttl", "5m")
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")

	viper.SetDefault("generator.count", 500)
	viper.SetDefault("generator.stores", []string{"Market Carrefour Baneasa", "Market Kaufland Colentina", "Market Lidl Pipera"})
	viper.SetDefault("generator.start_date", time.Now().AddDate(0, -2, 0).UTC().Truncate(24*time.Hour).Format(time.RFC3339))
	viper.SetDefault("generator.end_date", time.Now().UTC().Truncate(24*time.Hour).Format(time.RFC3339))
	viper.SetDefault("generator.cancel_rate", 0.08)
	viper.SetDefault("generator.seed", 42)
	viper.SetDefault("generator.min_minutes", 10)
	viper.SetDefault("generator.max_minutes", 90)
}

// LoadConfig initializes and reads the configuration using Viper. A missing
// default config file is not an error; an explicit one must exist.
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.AddConfigPath(".")
		viper.SetConfigName("orderpulse")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("orderpulse")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
