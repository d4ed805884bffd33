package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StaticSolver selects the built-in planner instead of an HTTP backend.
const StaticSolver = "static"

// Config holds the settings of both binaries. cmd/server reads Server, Database,
// Geocode, Redis and Solver; cmd/console reads Console. Log is shared.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Geocode  GeocodeConfig  `mapstructure:"geocode"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Solver   SolverConfig   `mapstructure:"solver"`
	Console  ConsoleConfig  `mapstructure:"console"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type GeocodeConfig struct {
	// ORSKey empty disables server-side geocoding; orders then need coordinates.
	ORSKey  string `mapstructure:"ors_key"`
	Country string `mapstructure:"country"`
	// Cache is "sql" or "redis".
	Cache string `mapstructure:"cache"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type SolverConfig struct {
	// URL of the routing backend, or "static" for the built-in straight-line planner.
	URL string `mapstructure:"url"`
}

type ConsoleConfig struct {
	APIURL  string `mapstructure:"api_url"`
	LogFile string `mapstructure:"log_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads .env (if present), an optional config.yaml, then environment
// variables: SERVER_PORT overrides server.port, and so on.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found (using environment variables)")
	}

	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/app.db")
	v.SetDefault("geocode.ors_key", "")
	v.SetDefault("geocode.country", "UA")
	v.SetDefault("geocode.cache", "sql")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("solver.url", "http://localhost:8090")
	v.SetDefault("console.api_url", "http://localhost:8080/api")
	v.SetDefault("console.log_file", "console.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	return &cfg, nil
}

// ValidateServer checks the settings cmd/server depends on.
func (c *Config) ValidateServer() error {
	var errs []string

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, "server.port is required")
	}
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, "database.dsn is required")
	}
	switch c.Geocode.Cache {
	case "sql":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, "redis.addr is required when geocode.cache is redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("geocode.cache must be sql or redis, got %q", c.Geocode.Cache))
	}
	if c.Solver.URL != StaticSolver {
		if err := checkURL(c.Solver.URL); err != nil {
			errs = append(errs, "solver.url "+err.Error())
		}
	}

	return joinErrs(errs)
}

// ValidateConsole checks the settings cmd/console depends on.
func (c *Config) ValidateConsole() error {
	var errs []string

	if err := checkURL(c.Console.APIURL); err != nil {
		errs = append(errs, "console.api_url "+err.Error())
	}
	if strings.TrimSpace(c.Console.LogFile) == "" {
		errs = append(errs, "console.log_file is required")
	}

	return joinErrs(errs)
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func checkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL, got %q", raw)
	}
	return nil
}

func joinErrs(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
