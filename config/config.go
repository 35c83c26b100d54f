package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "taskflow"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Client    ClientConfig    `mapstructure:"client"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORSOrigin   string        `mapstructure:"cors_origin"`
	// AuthRPS and AuthBurst throttle /api/auth/* per client address.
	AuthRPS   float64 `mapstructure:"auth_rps"`
	AuthBurst int     `mapstructure:"auth_burst"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // memory, sqlite, postgres or mongo
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type SessionsConfig struct {
	Backend       string `mapstructure:"backend"` // memory or redis
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

type GeneratorConfig struct {
	Provider  string        `mapstructure:"provider"` // gemini, ollama or none
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	OllamaURL string        `mapstructure:"ollama_url"`
	GeminiURL string        `mapstructure:"gemini_url"` // empty uses the public endpoint
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SessionPath string        `mapstructure:"session_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Dir is the per-user configuration directory, ~/.config/taskflow.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".config", appName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.auth_rps", 1.0)
	v.SetDefault("server.auth_burst", 10)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", filepath.Join(Dir(), "taskflow.db"))
	v.SetDefault("storage.database", appName)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("sessions.backend", "memory")
	v.SetDefault("sessions.redis_addr", "localhost:6379")
	v.SetDefault("sessions.redis_password", "")
	v.SetDefault("sessions.redis_db", 0)

	v.SetDefault("generator.provider", "gemini")
	v.SetDefault("generator.model", "gemini-2.5-flash")
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.ollama_url", "http://localhost:11434")
	v.SetDefault("generator.gemini_url", "")
	v.SetDefault("generator.timeout", 25*time.Second)

	v.SetDefault("client.base_url", "http://localhost:5000/api")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.session_path", filepath.Join(Dir(), "session.json"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration in increasing priority: defaults, the config
// file, TASKFLOW_* environment variables. A .env file in the working
// directory is loaded into the environment first. An empty path searches
// ./taskflow.yaml and ~/.config/taskflow/taskflow.yaml.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	applyLegacyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyLegacyEnv honours the unprefixed variables earlier deployments used.
func applyLegacyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TASKFLOW_SERVER_PORT") == "" {
		cfg.Server.Port = port
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" && cfg.Storage.Driver == "mongo" && os.Getenv("TASKFLOW_STORAGE_DSN") == "" {
		cfg.Storage.DSN = uri
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" && cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = secret
	}
	if key := os.Getenv("API_KEY"); key != "" && cfg.Generator.APIKey == "" {
		cfg.Generator.APIKey = key
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres", "mongo":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Sessions.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown sessions backend %q", c.Sessions.Backend)
	}
	switch c.Generator.Provider {
	case "gemini", "ollama", "none", "":
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	return nil
}
