package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// PathEnv names the variable holding the YAML config path.
	PathEnv     = "BOOKSHELF_CONFIG"
	DefaultPath = "bookshelf.yaml"
	EnvPrefix   = "BOOKSHELF"
)

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// ComponentConfig holds the network settings of one listener.
type ComponentConfig struct {
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
}

type HTTPConfig struct {
	ComponentConfig `yaml:",inline"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

type GRPCConfig struct {
	ComponentConfig `yaml:",inline"`
	Enabled         bool `yaml:"enabled"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	Path  string `yaml:"path"`
}

type ReviewsConfig struct {
	// Sanitize is none, strict or ugc.
	Sanitize string `yaml:"sanitize"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ClientConfig struct {
	BaseURL string `yaml:"base_url" split_words:"true"`
}

// Config is the root of bookshelf.yaml.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Reviews   ReviewsConfig   `yaml:"reviews"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Client    ClientConfig    `yaml:"client"`
}

// Default returns the settings used when neither file nor environment
// override them. Port 3000 is the service's historical fixed port.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			ComponentConfig: ComponentConfig{Protocol: "http", Host: "", Port: 3000},
			ShutdownTimeout: 5 * time.Second,
		},
		GRPC: GRPCConfig{
			ComponentConfig: ComponentConfig{Protocol: "tcp", Host: "", Port: 3001},
		},
		Storage:   StorageConfig{Driver: "memory", DSN: ":memory:"},
		Log:       LogConfig{Level: "info"},
		Reviews:   ReviewsConfig{Sanitize: "none"},
		RateLimit: RateLimitConfig{Burst: 20},
		Client:    ClientConfig{BaseURL: "http://localhost:3000"},
	}
}

// Get returns the process-wide configuration, loaded once from the path in
// BOOKSHELF_CONFIG (or bookshelf.yaml).
func Get() (*Config, error) {
	once.Do(func() {
		path := os.Getenv(PathEnv)
		if path == "" {
			path = DefaultPath
		}
		var cfg Config
		cfg, loadErr = Load(path)
		instance = &cfg
	})
	return instance, loadErr
}

// Load reads path over the defaults, applies BOOKSHELF_* environment
// overrides (BOOKSHELF_HTTP_PORT, BOOKSHELF_STORAGE_DRIVER, ...) and
// validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(f, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return ErrInvalid("http.port must be in 1..65535")
	}
	if c.GRPC.Enabled && (c.GRPC.Port <= 0 || c.GRPC.Port > 65535) {
		return ErrInvalid("grpc.port must be in 1..65535")
	}
	if c.GRPC.Enabled && c.GRPC.Port == c.HTTP.Port && c.GRPC.Host == c.HTTP.Host {
		return ErrInvalid("grpc and http cannot share a port")
	}
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.DSN == "" {
			return ErrInvalid("storage.dsn is required for sqlite")
		}
	default:
		return ErrInvalid(fmt.Sprintf("unknown storage.driver %q", c.Storage.Driver))
	}
	switch c.Reviews.Sanitize {
	case "", "none", "strict", "ugc":
	default:
		return ErrInvalid(fmt.Sprintf("unknown reviews.sanitize %q", c.Reviews.Sanitize))
	}
	if c.RateLimit.RPS < 0 {
		return ErrInvalid("ratelimit.rps cannot be negative")
	}
	return nil
}

type invalidErr string

func (e invalidErr) Error() string { return string(e) }

func ErrInvalid(msg string) error { return invalidErr(msg) }

// Address returns host:port.
func (c ComponentConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FullURL returns protocol://host:port, with localhost standing in for an
// empty host.
func (c ComponentConfig) FullURL() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s://%s:%d", c.Protocol, host, c.Port)
}

// DialAddress is Address with localhost standing in for an empty host, for
// clients connecting to a listener bound on all interfaces.
func (c ComponentConfig) DialAddress() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, c.Port)
}

// ServerURL is where clients find the API: client.base_url, or the server's
// own http listener when that is unset.
func (c *Config) ServerURL() string {
	if c.Client.BaseURL != "" {
		return c.Client.BaseURL
	}
	return c.HTTP.FullURL()
}
