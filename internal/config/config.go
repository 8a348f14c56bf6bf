package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kevin07696/vanco-gateway/internal/adapters/vanco"
	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// Token store backends
const (
	TokenStoreFile     = "file"
	TokenStoreRedis    = "redis"
	TokenStorePostgres = "postgres"
)

// Audit sinks
const (
	AuditLog      = "log"
	AuditPostgres = "postgres"
)

// Secret backends used to resolve the gateway password
const (
	SecretsLocal = "local"
	SecretsAWS   = "aws"
	SecretsVault = "vault"
)

// Config holds all client configuration
type Config struct {
	Gateway    GatewayConfig
	TokenStore TokenStoreConfig
	Audit      AuditConfig
	Secrets    SecretsConfig
	Logger     LoggerConfig
}

// GatewayConfig holds Vanco web service settings
type GatewayConfig struct {
	Environment    string        // "test" or "live"; picks the default URL
	URL            string        // endpoint; defaults from Environment
	ClientID       string        // Vanco client id
	Login          string        // web service user id
	Password       string        // web service password; may come from PasswordSecret instead
	PasswordSecret string        // secret path resolved through Secrets when Password is empty
	Timeout        time.Duration // whole request/response exchange
	TimeZone       string        // IANA zone RequestTime is rendered in; empty means local time

	InsecureSkipVerify bool // test environment only
}

// TokenStoreConfig selects where the session token is cached
type TokenStoreConfig struct {
	Backend     string // file, redis, postgres
	TTL         time.Duration
	FilePath    string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	RedisKey    string
	DatabaseURL string
}

// AuditConfig selects where redacted transaction records go
type AuditConfig struct {
	Sink        string // log, postgres
	DatabaseURL string
}

// SecretsConfig configures the secret backend used for PasswordSecret
type SecretsConfig struct {
	Backend     string // local, aws, vault
	LocalPath   string
	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string
	VaultAddr   string
	VaultToken  string
	VaultMount  string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Environment string // "production" selects JSON output
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	databaseURL := getEnv("DATABASE_URL", "")

	cfg := &Config{
		Gateway: GatewayConfig{
			Environment:    getEnv("VANCO_ENVIRONMENT", "test"),
			URL:            getEnv("VANCO_URL", ""),
			ClientID:       getEnv("VANCO_CLIENT_ID", ""),
			Login:          getEnv("VANCO_LOGIN", ""),
			Password:       getEnv("VANCO_PASSWORD", ""),
			PasswordSecret: getEnv("VANCO_PASSWORD_SECRET", ""),
			Timeout:        getEnvAsDuration("VANCO_TIMEOUT", 30*time.Second),
			TimeZone:       getEnv("VANCO_TIMEZONE", ""),

			InsecureSkipVerify: getEnvAsBool("VANCO_INSECURE_SKIP_VERIFY", false),
		},
		TokenStore: TokenStoreConfig{
			Backend:     getEnv("VANCO_TOKEN_STORE", TokenStoreFile),
			TTL:         getEnvAsDuration("VANCO_TOKEN_TTL", domain.DefaultTokenTTL),
			FilePath:    getEnv("VANCO_TOKEN_FILE", "./tmp/vanco_token.json"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPass:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:     getEnvAsInt("REDIS_DB", 0),
			RedisKey:    getEnv("VANCO_TOKEN_REDIS_KEY", "vanco:session_token"),
			DatabaseURL: databaseURL,
		},
		Audit: AuditConfig{
			Sink:        getEnv("VANCO_AUDIT", AuditLog),
			DatabaseURL: databaseURL,
		},
		Secrets: SecretsConfig{
			Backend:     getEnv("SECRETS_BACKEND", SecretsLocal),
			LocalPath:   getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			AWSProfile:  getEnv("AWS_PROFILE", ""),
			AWSEndpoint: getEnv("AWS_ENDPOINT_URL", ""),
			VaultAddr:   getEnv("VAULT_ADDR", ""),
			VaultToken:  getEnv("VAULT_TOKEN", ""),
			VaultMount:  getEnv("VAULT_MOUNT", "secret"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
	}

	if cfg.Gateway.URL == "" {
		cfg.Gateway.URL = DefaultURL(cfg.Gateway.Environment)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultURL returns the gateway endpoint for an environment
func DefaultURL(environment string) string {
	if strings.EqualFold(environment, "live") || strings.EqualFold(environment, "production") {
		return vanco.LiveURL
	}
	return vanco.TestURL
}

// Validate checks required fields. Every failure is a configuration error.
func (c *Config) Validate() error {
	if c.Gateway.URL == "" {
		return domain.NewConfigurationError("VANCO_URL is required")
	}
	if c.Gateway.ClientID == "" {
		return domain.NewConfigurationError("VANCO_CLIENT_ID is required")
	}
	if c.Gateway.Login == "" {
		return domain.NewConfigurationError("VANCO_LOGIN is required")
	}
	if c.Gateway.Password == "" && c.Gateway.PasswordSecret == "" {
		return domain.NewConfigurationError("VANCO_PASSWORD or VANCO_PASSWORD_SECRET is required")
	}
	if c.Gateway.TimeZone != "" {
		if _, err := time.LoadLocation(c.Gateway.TimeZone); err != nil {
			return domain.NewConfigurationError("invalid VANCO_TIMEZONE: " + c.Gateway.TimeZone)
		}
	}
	if c.TokenStore.TTL <= 0 {
		return domain.NewConfigurationError("VANCO_TOKEN_TTL must be positive")
	}

	switch c.TokenStore.Backend {
	case TokenStoreFile:
	case TokenStoreRedis:
		if c.TokenStore.RedisAddr == "" {
			return domain.NewConfigurationError("REDIS_ADDR is required for the redis token store")
		}
	case TokenStorePostgres:
		if c.TokenStore.DatabaseURL == "" {
			return domain.NewConfigurationError("DATABASE_URL is required for the postgres token store")
		}
	default:
		return domain.NewConfigurationError("unknown VANCO_TOKEN_STORE: " + c.TokenStore.Backend)
	}

	switch c.Audit.Sink {
	case AuditLog:
	case AuditPostgres:
		if c.Audit.DatabaseURL == "" {
			return domain.NewConfigurationError("DATABASE_URL is required for the postgres audit sink")
		}
	default:
		return domain.NewConfigurationError("unknown VANCO_AUDIT: " + c.Audit.Sink)
	}

	if c.Gateway.Password == "" {
		switch c.Secrets.Backend {
		case SecretsLocal, SecretsAWS:
		case SecretsVault:
			if c.Secrets.VaultAddr == "" {
				return domain.NewConfigurationError("VAULT_ADDR is required for the vault secrets backend")
			}
		default:
			return domain.NewConfigurationError("unknown SECRETS_BACKEND: " + c.Secrets.Backend)
		}
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("45m") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
