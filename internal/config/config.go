package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const FileName = "kloza.yml"

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config models kloza.yml.
type Config struct {
	Server Server `yaml:"server"`
	Store  Store  `yaml:"store"`
	Auth   Auth   `yaml:"auth"`
	Log    Log    `yaml:"log"`
}

type Server struct {
	Addr              string        `yaml:"addr"`
	BasePath          string        `yaml:"base_path"`
	Mode              string        `yaml:"mode"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RateLimit         RateLimit     `yaml:"rate_limit"`
}

// RateLimit bounds write requests per second. A zero RPS disables limiting.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Store struct {
	Driver string `yaml:"driver"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
}

// Auth enables bearer token checks on the API when JWTSecret is set.
type Auth struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Development reports whether error details may be exposed to clients.
func (s Server) Development() bool {
	return s.Mode != ModeProduction
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with kloza config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with '/'")
	}
	switch c.Server.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("config.server.mode must be '%s' or '%s'", ModeDevelopment, ModeProduction)
	}
	if c.Server.ReadHeaderTimeout < 0 {
		return fmt.Errorf("config.server.read_header_timeout must not be negative")
	}
	if c.Server.RateLimit.RPS < 0 {
		return fmt.Errorf("config.server.rate_limit.rps must not be negative")
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst < 1 {
		return fmt.Errorf("config.server.rate_limit.burst must be at least 1 when rps is set")
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("config.store.sqlite.path is required")
		}
	case DriverMongo:
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("config.store.mongo.uri is required")
		}
		if c.Store.Mongo.Database == "" {
			return fmt.Errorf("config.store.mongo.database is required")
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("config.store.postgres.dsn is required")
		}
	default:
		return fmt.Errorf("config.store.driver must be one of: %s, %s, %s", DriverSQLite, DriverMongo, DriverPostgres)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config.log.format must be 'json' or 'console'")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, FileName)
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the default Config.
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultTemplate), &cfg); err != nil {
		panic(fmt.Sprintf("default config template: %v", err))
	}
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing from
// the document keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// ApplyOverrides copies every key set in v (flags or KLOZA_* environment
// variables) over the file values and validates the result.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str("server.addr", &c.Server.Addr)
	str("server.base_path", &c.Server.BasePath)
	str("server.mode", &c.Server.Mode)
	if v.IsSet("server.read_header_timeout") {
		c.Server.ReadHeaderTimeout = v.GetDuration("server.read_header_timeout")
	}
	if v.IsSet("server.rate_limit.rps") {
		c.Server.RateLimit.RPS = v.GetFloat64("server.rate_limit.rps")
	}
	if v.IsSet("server.rate_limit.burst") {
		c.Server.RateLimit.Burst = v.GetInt("server.rate_limit.burst")
	}
	str("store.driver", &c.Store.Driver)
	str("store.sqlite.path", &c.Store.SQLite.Path)
	str("store.mongo.uri", &c.Store.Mongo.URI)
	str("store.mongo.database", &c.Store.Mongo.Database)
	str("store.postgres.dsn", &c.Store.Postgres.DSN)
	str("auth.jwt_secret", &c.Auth.JWTSecret)
	str("log.level", &c.Log.Level)
	str("log.format", &c.Log.Format)
	return c.Validate()
}

// NewViper returns a viper instance reading KLOZA_* variables, with dots in
// keys mapped to underscores (store.driver -> KLOZA_STORE_DRIVER).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("KLOZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

const defaultTemplate = `server:
  addr: ":3000"
  base_path: /api
  mode: development
  read_header_timeout: 5s
  rate_limit:
    rps: 0
    burst: 20

store:
  driver: sqlite
  sqlite:
    path: .kloza/kloza.db
  mongo:
    uri: mongodb://localhost:27017
    database: kloza
  postgres:
    dsn: postgres://localhost:5432/kloza?sslmode=disable

auth:
  jwt_secret: ""

log:
  level: info
  format: json
`
