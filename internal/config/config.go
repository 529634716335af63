// Package config loads tutordash settings from tutordash.yaml, TUTORDASH_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	fileName  = "tutordash"
	fileType  = "yaml"
	envPrefix = "TUTORDASH"
)

// Config is the resolved configuration.
type Config struct {
	API     API     `mapstructure:"api"`
	Session Session `mapstructure:"session"`
	Network Network `mapstructure:"network"`
	Forms   Forms   `mapstructure:"forms"`
	Server  Server  `mapstructure:"server"`
	Log     Log     `mapstructure:"log"`
}

type API struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	// OpenAPI is an optional document to build forms from.
	OpenAPI string `mapstructure:"openapi"`
}

type Session struct {
	Backend    string `mapstructure:"backend" validate:"oneof=memory sqlite redis"`
	Profile    string `mapstructure:"profile" validate:"required"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Backend sqlite"`
	Redis      Redis  `mapstructure:"redis"`
}

type Redis struct {
	Addr     string        `mapstructure:"addr" validate:"required"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type Network struct {
	PageSize int           `mapstructure:"page_size" validate:"min=1,max=100"`
	Sort     string        `mapstructure:"sort" validate:"required"`
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

type Forms struct {
	// Dir holds extra YAML or JSON form documents.
	Dir string `mapstructure:"dir"`
}

type Server struct {
	Addr         string            `mapstructure:"addr" validate:"required,hostname_port"`
	Theme        string            `mapstructure:"theme"`
	ThemeVariant string            `mapstructure:"theme_variant"`
	ThemeTokens  map[string]string `mapstructure:"theme_tokens"`
	// ShutdownGrace bounds how long in-flight requests get on shutdown.
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace" validate:"gt=0"`
}

type Log struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format      string `mapstructure:"format" validate:"oneof=json console"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups  int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays  int    `mapstructure:"max_age_days" validate:"gte=0"`
	Development bool   `mapstructure:"development"`
}

// DefaultDir is the per-user configuration directory.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tutordash")
	}
	return ".tutordash"
}

// NewViper returns a viper instance with defaults and environment binding.
// Callers bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.openapi", "")

	v.SetDefault("session.backend", "sqlite")
	v.SetDefault("session.profile", "default")
	v.SetDefault("session.sqlite_path", filepath.Join(DefaultDir(), "session.db"))
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.ttl", time.Duration(0))

	v.SetDefault("network.page_size", 16)
	v.SetDefault("network.sort", "alphabetical")
	v.SetDefault("network.debounce", 300*time.Millisecond)

	v.SetDefault("forms.dir", "")

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.theme", "")
	v.SetDefault("server.theme_variant", "")
	v.SetDefault("server.shutdown_grace", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.development", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and validates the result. An explicit path must
// exist; otherwise tutordash.yaml is looked up in the working directory and
// DefaultDir, and a missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = NewViper()
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its field rules.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
