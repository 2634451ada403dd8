package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	EnvDevelopment = "development"
)

type Config struct {
	HTTPAddr             string
	AppEnv               string
	DatabaseURL          string
	Store                string
	JWTSecret            string
	JWTIssuer            string
	TokenTTL             time.Duration
	SessionTTL           time.Duration
	BcryptCost           int
	SessionSweepInterval time.Duration
	SessionSweepTimeout  time.Duration
	RegisterIssuesToken  bool
	RedisAddr            string
	RedisPassword        string
	ActivityThrottle     time.Duration
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		AppEnv:               getenv("APP_ENV", "production"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		Store:                strings.ToLower(getenv("STORE", StorePostgres)),
		JWTSecret:            getenv("JWT_SECRET", ""),
		JWTIssuer:            getenv("JWT_ISSUER", "authcore"),
		TokenTTL:             getenvDuration("TOKEN_TTL", 30*24*time.Hour),
		SessionTTL:           getenvDuration("SESSION_TTL", 7*24*time.Hour),
		BcryptCost:           getenvInt("BCRYPT_COST", 10),
		SessionSweepInterval: getenvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		SessionSweepTimeout:  getenvDuration("SESSION_SWEEP_TIMEOUT", 30*time.Second),
		RegisterIssuesToken:  getenvBool("REGISTER_ISSUES_TOKEN", false),
		RedisAddr:            getenv("REDIS_ADDR", ""),
		RedisPassword:        getenv("REDIS_PASSWORD", ""),
		ActivityThrottle:     getenvDuration("ACTIVITY_THROTTLE", time.Minute),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE=postgres")
		}
	case StoreMemory:
	default:
		return errors.New("STORE must be postgres or memory")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func (c Config) Development() bool {
	return c.AppEnv == EnvDevelopment
}

// EffectiveTokenTTL keeps a bearer token from outliving its session.
func (c Config) EffectiveTokenTTL() time.Duration {
	if c.TokenTTL <= 0 || c.TokenTTL > c.SessionTTL {
		return c.SessionTTL
	}
	return c.TokenTTL
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
