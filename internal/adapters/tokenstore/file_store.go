package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// DefaultTokenFile is where the file store keeps the token when no path is configured
const DefaultTokenFile = "./tmp/vanco_token.json"

// fileStore keeps the token in a single JSON file shared by every process on the host.
// Writes go to a temp file in the same directory and are renamed over the target,
// so a reader sees either the old record or the new one.
type fileStore struct {
	path   string
	policy policy
	logger *zap.Logger
}

// NewFileStore creates a file-backed TokenStore
func NewFileStore(path string, logger *zap.Logger, opts ...Option) ports.TokenStore {
	if path == "" {
		path = DefaultTokenFile
	}
	return &fileStore{
		path:   path,
		policy: newPolicy("file", opts),
		logger: logger,
	}
}

func (s *fileStore) Get(ctx context.Context) (*domain.SessionToken, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.policy.miss(missNotFound)
			return nil, false
		}
		s.policy.miss(missError)
		s.logger.Warn("Failed to read session token file, forcing login",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, false
	}

	token, err := decodeToken(data)
	if err != nil {
		s.policy.miss(missError)
		s.logger.Warn("Session token file is corrupt, forcing login",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, false
	}

	if !s.policy.accept(token) {
		return nil, false
	}
	return token, true
}

func (s *fileStore) Put(ctx context.Context, value string) (*domain.SessionToken, error) {
	token := s.policy.issue(value)
	err := s.write(token)
	s.policy.wrote(err)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Stored session token",
		zap.String("path", s.path),
		zap.Time("obtained_at", token.ObtainedAt),
	)
	return token, nil
}

func (s *fileStore) write(token *domain.SessionToken) error {
	data, err := encodeToken(token)
	if err != nil {
		return fmt.Errorf("failed to encode session token: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vanco_token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}
