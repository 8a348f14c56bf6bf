package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
	"github.com/kevin07696/vanco-gateway/internal/domain"
	pkghttp "github.com/kevin07696/vanco-gateway/pkg/http"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Config contains configuration for the HTTPS transport
type Config struct {
	// Timeout bounds a whole request/response exchange
	Timeout time.Duration

	// InsecureSkipVerify disables certificate checks (test environment only)
	InsecureSkipVerify bool
}

// DefaultConfig returns default transport configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// httpsTransport implements the Transport port over net/http
type httpsTransport struct {
	client ports.HTTPClient
	logger *zap.Logger
}

// NewHTTPSTransport creates a transport with a pooled client tuned for the gateway
func NewHTTPSTransport(cfg *Config, logger *zap.Logger) ports.Transport {
	clientCfg := pkghttp.GatewayClientConfig()
	clientCfg.InsecureSkipVerify = cfg.InsecureSkipVerify
	return NewHTTPSTransportWithClient(pkghttp.NewHTTPClient(clientCfg, cfg.Timeout), logger)
}

// NewHTTPSTransportWithClient creates a transport around an existing client
func NewHTTPSTransportWithClient(client ports.HTTPClient, logger *zap.Logger) ports.Transport {
	return &httpsTransport{
		client: client,
		logger: logger,
	}
}

// Post sends body to url. Any failure, including a non-2xx status, is a transport error.
func (t *httpsTransport) Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewTransportError("failed to create request", err)
	}

	// net/http sends ContentLength, not the header map entry
	req.ContentLength = int64(len(body))
	for key, value := range headers {
		if http.CanonicalHeaderKey(key) == "Content-Length" {
			continue
		}
		req.Header.Set(key, value)
	}

	startTime := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("Failed to send gateway request",
			zap.String("url", url),
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Error(err),
		)
		return nil, domain.NewTransportError("failed to send request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		t.logger.Error("Failed to read gateway response body", zap.Error(err))
		return nil, domain.NewTransportError("failed to read response", err)
	}
	if len(respBody) > maxResponseBytes {
		t.logger.Error("Gateway response exceeds size limit",
			zap.Int("status_code", resp.StatusCode),
			zap.Int("limit_bytes", maxResponseBytes),
		)
		return nil, domain.NewTransportError("response body exceeds size limit", nil).
			WithDetail("limit_bytes", maxResponseBytes)
	}

	t.logger.Debug("Received gateway response",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("body_length", len(respBody)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.logger.Error("Gateway returned non-success status",
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, domain.NewTransportError(fmt.Sprintf("gateway returned status %d", resp.StatusCode), nil).
			WithDetail("status_code", resp.StatusCode)
	}

	return respBody, nil
}
