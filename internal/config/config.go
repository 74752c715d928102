// Package config provides Viper-based configuration loading for the bancho server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Domain is the public hostname the osu! client connects through.
	Domain string `mapstructure:"domain"`
	// Debug enables gin debug mode and verbose request logging.
	Debug bool `mapstructure:"debug"`
}

// HTTPConfig holds the bancho HTTP listener settings.
type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled selects postgres-backed users, channels and beatmaps. When
	// false the server seeds channels from a file and refuses logins.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BanchoConfig holds protocol and session behaviour.
type BanchoConfig struct {
	CommandPrefix  string        `mapstructure:"command_prefix"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	// AuthCacheTTL is how long a verified password hash pair stays cached.
	AuthCacheTTL   time.Duration `mapstructure:"auth_cache_ttl"`
	ChannelsFile   string        `mapstructure:"channels_file"`
	BotID          int32         `mapstructure:"bot_id"`
	BotName        string        `mapstructure:"bot_name"`
	MenuIcon       string        `mapstructure:"menu_icon"`
	WelcomeMessage string        `mapstructure:"welcome_message"`
}

// BeatmapConfig holds beatmap lookup settings.
type BeatmapConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Bancho   BanchoConfig   `mapstructure:"bancho"`
	Beatmap  BeatmapConfig  `mapstructure:"beatmap"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateHTTP(c.HTTP); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBancho(c.Bancho); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Beatmap.CacheTTL <= 0 {
		errs = append(errs, "beatmap.cache_ttl must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	if h.ReadTimeout < 0 {
		errs = append(errs, "http.read_timeout must not be negative")
	}
	if h.WriteTimeout < 0 {
		errs = append(errs, "http.write_timeout must not be negative")
	}
	if h.ShutdownTimeout <= 0 {
		errs = append(errs, "http.shutdown_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBancho(b BanchoConfig) error {
	var errs []string
	if b.CommandPrefix == "" {
		errs = append(errs, "bancho.command_prefix must not be empty")
	}
	if b.ConfirmTimeout <= 0 {
		errs = append(errs, "bancho.confirm_timeout must be positive")
	}
	if b.SessionTimeout <= 0 {
		errs = append(errs, "bancho.session_timeout must be positive")
	}
	if b.SweepInterval <= 0 {
		errs = append(errs, "bancho.sweep_interval must be positive")
	}
	if b.AuthCacheTTL < 0 {
		errs = append(errs, "bancho.auth_cache_ttl must not be negative")
	}
	if b.BotID < 1 {
		errs = append(errs, fmt.Sprintf("bancho.bot_id must be >= 1, got %d", b.BotID))
	}
	if b.BotName == "" {
		errs = append(errs, "bancho.bot_name must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with RAGNAROK_ prefix
	v.SetEnvPrefix("RAGNAROK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.domain", "localhost")
	v.SetDefault("server.debug", false)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 5001)
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "5s")

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ragnarok")
	v.SetDefault("database.password", "ragnarok")
	v.SetDefault("database.name", "ragnarok")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("bancho.command_prefix", "!")
	v.SetDefault("bancho.confirm_timeout", "60s")
	v.SetDefault("bancho.session_timeout", "5m")
	v.SetDefault("bancho.sweep_interval", "30s")
	v.SetDefault("bancho.auth_cache_ttl", "10m")
	v.SetDefault("bancho.channels_file", "configs/channels.yaml")
	v.SetDefault("bancho.bot_id", 1)
	v.SetDefault("bancho.bot_name", "Ragnarok")
	v.SetDefault("bancho.menu_icon", "")
	v.SetDefault("bancho.welcome_message", "Welcome to Ragnarok!")

	v.SetDefault("beatmap.cache_ttl", "30m")
}
