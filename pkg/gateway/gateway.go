// Package gateway wires a ready-to-use Vanco client from configuration.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/vanco-gateway/internal/adapters/audit"
	"github.com/kevin07696/vanco-gateway/internal/adapters/database"
	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
	"github.com/kevin07696/vanco-gateway/internal/adapters/secrets"
	"github.com/kevin07696/vanco-gateway/internal/adapters/tokenstore"
	"github.com/kevin07696/vanco-gateway/internal/adapters/transport"
	"github.com/kevin07696/vanco-gateway/internal/adapters/vanco"
	"github.com/kevin07696/vanco-gateway/internal/config"
	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// Gateway owns a vanco.Client and the connections behind its stores
type Gateway struct {
	*vanco.Client

	logger  *zap.Logger
	closers []func()
}

// NewLogger builds the process logger: JSON at the configured level in
// production, the development console encoder otherwise.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if cfg.Environment == "production" {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		return zapCfg.Build()
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Level != "" {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// OpenFromEnv loads configuration from the environment and opens a Gateway
func OpenFromEnv(ctx context.Context) (*Gateway, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return Open(ctx, cfg, logger)
}

// Open validates cfg and connects every configured backend. On error anything
// already opened is closed again.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *Gateway, err error) {
	if cfg == nil {
		return nil, domain.NewConfigurationError("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gw := &Gateway{logger: logger}
	defer func() {
		if err != nil {
			gw.Close()
		}
	}()

	password, err := resolvePassword(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// the token store and the audit sink share a pool when they name the same database
	pools := make(map[string]*pgxpool.Pool)
	var tokenPool, auditPool *pgxpool.Pool
	if cfg.TokenStore.Backend == config.TokenStorePostgres {
		tokenPool, err = gw.openPool(ctx, pools, cfg.TokenStore.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Audit.Sink == config.AuditPostgres {
		auditPool, err = gw.openPool(ctx, pools, cfg.Audit.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	tokens, err := gw.openTokenStore(ctx, cfg.TokenStore, tokenPool)
	if err != nil {
		return nil, err
	}

	recorder, err := openRecorder(ctx, cfg.Audit, auditPool, logger)
	if err != nil {
		return nil, err
	}

	builderOpts := []vanco.BuilderOption{}
	if cfg.Gateway.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.Gateway.TimeZone)
		if err != nil {
			return nil, domain.NewConfigurationError("invalid time zone: " + cfg.Gateway.TimeZone)
		}
		builderOpts = append(builderOpts, vanco.WithLocation(loc))
	}

	https := transport.NewHTTPSTransport(&transport.Config{
		Timeout:            cfg.Gateway.Timeout,
		InsecureSkipVerify: cfg.Gateway.InsecureSkipVerify,
	}, logger)

	client, err := vanco.NewClient(vanco.ClientConfig{
		URL:      cfg.Gateway.URL,
		ClientID: cfg.Gateway.ClientID,
		Login:    cfg.Gateway.Login,
		Password: password,
	}, https, tokens, logger,
		vanco.WithMessageBuilder(vanco.NewMessageBuilder(builderOpts...)),
		vanco.WithAuditRecorder(recorder),
	)
	if err != nil {
		return nil, err
	}
	gw.Client = client

	logger.Info("Vanco gateway ready",
		zap.String("url", cfg.Gateway.URL),
		zap.String("token_store", cfg.TokenStore.Backend),
		zap.String("audit", cfg.Audit.Sink),
	)
	return gw, nil
}

// Close releases database and Redis connections
func (g *Gateway) Close() {
	for i := len(g.closers) - 1; i >= 0; i-- {
		g.closers[i]()
	}
	g.closers = nil
}

func (g *Gateway) openPool(ctx context.Context, pools map[string]*pgxpool.Pool, databaseURL string) (*pgxpool.Pool, error) {
	if pool, ok := pools[databaseURL]; ok {
		return pool, nil
	}
	pool, err := database.NewPool(ctx, database.DefaultPostgreSQLConfig(databaseURL), g.logger)
	if err != nil {
		return nil, err
	}
	pools[databaseURL] = pool
	g.closers = append(g.closers, pool.Close)
	return pool, nil
}

func (g *Gateway) openTokenStore(ctx context.Context, cfg config.TokenStoreConfig, pool *pgxpool.Pool) (ports.TokenStore, error) {
	opts := []tokenstore.Option{tokenstore.WithTTL(cfg.TTL)}

	switch cfg.Backend {
	case config.TokenStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		g.closers = append(g.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return tokenstore.NewRedisStore(rdb, cfg.RedisKey, g.logger, opts...), nil

	case config.TokenStorePostgres:
		if err := tokenstore.EnsureTokenSchema(ctx, pool); err != nil {
			return nil, err
		}
		return tokenstore.NewPostgresStore(pool, tokenstore.DefaultTokenName, g.logger, opts...), nil

	default:
		return tokenstore.NewFileStore(cfg.FilePath, g.logger, opts...), nil
	}
}

func openRecorder(ctx context.Context, cfg config.AuditConfig, pool *pgxpool.Pool, logger *zap.Logger) (ports.AuditRecorder, error) {
	logRecorder := audit.NewLogRecorder(logger)
	if cfg.Sink != config.AuditPostgres {
		return logRecorder, nil
	}
	if err := audit.EnsureAuditSchema(ctx, pool); err != nil {
		return nil, err
	}
	return audit.NewMultiRecorder(logRecorder, audit.NewPostgresRecorder(pool)), nil
}

// resolvePassword prefers VANCO_PASSWORD and falls back to the configured secret backend
func resolvePassword(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error) {
	if cfg.Gateway.Password != "" {
		return cfg.Gateway.Password, nil
	}

	manager, err := newSecretManager(ctx, cfg.Secrets, logger)
	if err != nil {
		return "", err
	}
	secret, err := manager.GetSecret(ctx, cfg.Gateway.PasswordSecret)
	if err != nil {
		return "", domain.WrapError(domain.ErrorCodeConfiguration, "failed to resolve gateway password", err).
			WithDetail("secret", cfg.Gateway.PasswordSecret)
	}
	if secret.Value == "" {
		return "", domain.NewConfigurationError("gateway password secret is empty").
			WithDetail("secret", cfg.Gateway.PasswordSecret)
	}
	return secret.Value, nil
}

func newSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	switch cfg.Backend {
	case config.SecretsAWS:
		return secrets.NewAWSSecretsManagerAdapter(ctx, &secrets.AWSSecretsManagerConfig{
			Region:   cfg.AWSRegion,
			Profile:  cfg.AWSProfile,
			Endpoint: cfg.AWSEndpoint,
		}, logger)
	case config.SecretsVault:
		vaultCfg := secrets.DefaultVaultConfig(cfg.VaultAddr)
		vaultCfg.Token = cfg.VaultToken
		if cfg.VaultMount != "" {
			vaultCfg.MountPath = cfg.VaultMount
		}
		return secrets.NewVaultAdapter(ctx, vaultCfg, logger)
	default:
		return secrets.NewLocalSecretManager(cfg.LocalPath, logger), nil
	}
}
