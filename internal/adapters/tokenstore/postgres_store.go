package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// DefaultTokenName identifies the row holding the gateway session token
const DefaultTokenName = "vanco"

// TokenSchema creates the session token table
const TokenSchema = `CREATE TABLE IF NOT EXISTS vanco_session_tokens (
	name        TEXT PRIMARY KEY,
	value       TEXT NOT NULL,
	obtained_at TIMESTAMPTZ NOT NULL
)`

const (
	selectTokenSQL = `SELECT value, obtained_at FROM vanco_session_tokens WHERE name = $1`
	upsertTokenSQL = `INSERT INTO vanco_session_tokens (name, value, obtained_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, obtained_at = EXCLUDED.obtained_at`
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresStore struct {
	db     DBTX
	name   string
	policy policy
	logger *zap.Logger
}

// NewPostgresStore creates a TokenStore backed by the vanco_session_tokens table
func NewPostgresStore(db DBTX, name string, logger *zap.Logger, opts ...Option) ports.TokenStore {
	if name == "" {
		name = DefaultTokenName
	}
	return &postgresStore{
		db:     db,
		name:   name,
		policy: newPolicy("postgres", opts),
		logger: logger,
	}
}

// EnsureTokenSchema creates the token table if it does not exist
func EnsureTokenSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, TokenSchema); err != nil {
		return fmt.Errorf("create vanco_session_tokens: %w", err)
	}
	return nil
}

func (s *postgresStore) Get(ctx context.Context) (*domain.SessionToken, bool) {
	var (
		value      string
		obtainedAt time.Time
	)
	err := s.db.QueryRow(ctx, selectTokenSQL, s.name).Scan(&value, &obtainedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		s.policy.miss(missNotFound)
		return nil, false
	}
	if err != nil {
		s.policy.miss(missError)
		s.logger.Warn("Failed to read session token from database, forcing login",
			zap.String("name", s.name),
			zap.Error(err),
		)
		return nil, false
	}

	token := &domain.SessionToken{Value: value, ObtainedAt: obtainedAt}
	if !s.policy.accept(token) {
		return nil, false
	}
	return token, true
}

func (s *postgresStore) Put(ctx context.Context, value string) (*domain.SessionToken, error) {
	token := s.policy.issue(value)

	_, err := s.db.Exec(ctx, upsertTokenSQL, s.name, token.Value, token.ObtainedAt)
	s.policy.wrote(err)
	if err != nil {
		return nil, fmt.Errorf("upsert session token: %w", err)
	}

	s.logger.Debug("Stored session token in database",
		zap.String("name", s.name),
		zap.Time("obtained_at", token.ObtainedAt),
	)
	return token, nil
}
