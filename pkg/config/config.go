package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store drivers.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreBolt   = "bolt"
)

type Config struct {
	Env     string
	Port    int
	Metrics bool

	Backend BackendConfig
	Session SessionConfig
	Redis   RedisConfig
	Log     LogConfig
	Export  ExportConfig
}

// BackendConfig points the gateways at the REST backend.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls the server-side session holder and its cookie.
type SessionConfig struct {
	Store        string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	BoltPath     string
	CSRFSecret   string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportConfig tunes the internship export documents.
type ExportConfig struct {
	Title string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.Metrics = v.GetBool("ENABLE_METRICS")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
	}

	cfg.Session = SessionConfig{
		Store:        strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE"))),
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 8*time.Hour),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		BoltPath:     v.GetString("SESSION_BOLT_PATH"),
		CSRFSecret:   v.GetString("SESSION_CSRF_SECRET"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Prefix:   v.GetString("REDIS_SESSION_PREFIX"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Export = ExportConfig{Title: v.GetString("EXPORT_TITLE")}

	if cfg.Backend.BaseURL == "" {
		return nil, errors.New("BACKEND_BASE_URL must not be empty")
	}
	switch cfg.Session.Store {
	case SessionStoreMemory, SessionStoreRedis, SessionStoreBolt:
	default:
		return nil, errors.New("SESSION_STORE must be one of memory, redis, bolt")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 4200)
	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8080/api")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "8h")
	v.SetDefault("SESSION_COOKIE_NAME", "portal_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SESSION_BOLT_PATH", "./data/sessions.db")
	v.SetDefault("SESSION_CSRF_SECRET", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_SESSION_PREFIX", "portal:session:")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXPORT_TITLE", "Internships")
}

// viper reports a missing explicit config file as a plain *fs.PathError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
