// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// Config holds application configuration.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	HTTP     HTTPConfig    `mapstructure:"http"`
	Database Database      `mapstructure:"database"`
	Logging  LoggingConfig `mapstructure:"log"`
}

// ServerConfig contains listener options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig contains transport settings.
type HTTPConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Database describes the connection parameters and pool limits.
type Database struct {
	User             string        `mapstructure:"user" validate:"required"`
	Password         string        `mapstructure:"password" validate:"required"`
	Host             string        `mapstructure:"host" validate:"required"`
	Port             int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name             string        `mapstructure:"name" validate:"required"`
	SSLMode          string        `mapstructure:"sslmode"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MaxOpenConns     int           `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectRetries   int           `mapstructure:"connect_retries" validate:"min=1"`
}

// Load reads configuration from the process environment (and an optional .env
// file that never overrides variables already set).
func Load() (*Config, error) {
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("http.request_timeout", 5*time.Second)

	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.statement_timeout", 5*time.Second)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.connect_retries", 10)
}

// envBindings maps config keys to the variable names operators set. Keys not
// listed here resolve through the "." -> "_" replacer.
var envBindings = map[string]string{
	"server.port": "PORT",
}

func bindEnvs(v *viper.Viper) error {
	keys := []string{
		"log.level",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"http.request_timeout",
		"database.user",
		"database.password",
		"database.host",
		"database.port",
		"database.name",
		"database.sslmode",
		"database.statement_timeout",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.connect_retries",
	}

	for _, k := range keys {
		args := []string{k}
		if name, ok := envBindings[k]; ok {
			args = append(args, name)
		}
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind env %s: %w", k, err)
		}
	}
	return nil
}

var validate = validator.New()

// Validate reports every missing or out-of-range setting at once, naming the
// environment variable to fix where one exists.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envName(fe.StructNamespace())
		if fe.Tag() == "required" {
			problems = append(problems, name+" is required")
			continue
		}
		problems = append(problems, fmt.Sprintf("%s is invalid (%s=%s)", name, fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

// envName turns "Config.Database.User" into "DATABASE_USER".
func envName(namespace string) string {
	if namespace == "Config.Server.Port" {
		return "PORT"
	}
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.ToUpper(strings.Join(parts, "_"))
}

// toSnake splits on lower-to-upper transitions only, so acronyms stay whole
// ("SSLMode" -> "SSLMode", "MaxOpenConns" -> "Max_Open_Conns").
func toSnake(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// String masks the password.
func (d Database) String() string {
	return fmt.Sprintf("Database{user=%s host=%s port=%d name=%s sslmode=%s password=***}",
		d.User, d.Host, d.Port, d.Name, d.SSLMode)
}
