package vanco

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
	"github.com/kevin07696/vanco-gateway/internal/domain"
)

const (
	operationLogin    = "login"
	operationPurchase = "purchase"
)

// Gateway endpoints
const (
	TestURL = "https://www.vancodev.com/cgi-bin/wstest2.vps"
	LiveURL = "https://www.vancoservices.com/cgi-bin/ws2.vps"
)

// ClientConfig holds the mandatory gateway settings
type ClientConfig struct {
	URL      string
	ClientID string
	Login    string
	Password string
}

// Validate returns a configuration error naming the first missing field
func (c *ClientConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.URL) == "":
		return domain.NewConfigurationError("gateway url is required")
	case strings.TrimSpace(c.ClientID) == "":
		return domain.NewConfigurationError("client id is required")
	case strings.TrimSpace(c.Login) == "":
		return domain.NewConfigurationError("login is required")
	case c.Password == "":
		return domain.NewConfigurationError("password is required")
	}
	return nil
}

// Client runs Vanco gateway operations: it obtains a session token (from the
// TokenStore or via Login), sends the transaction and returns the parsed result.
// Every step runs on the caller's goroutine; Client holds no per-call state and is
// safe for concurrent use.
type Client struct {
	config    ClientConfig
	transport ports.Transport
	tokens    ports.TokenStore
	builder   *MessageBuilder
	parser    *ResponseParser
	recorder  ports.AuditRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures optional Client collaborators
type Option func(*Client)

func WithMessageBuilder(b *MessageBuilder) Option {
	return func(c *Client) { c.builder = b }
}

func WithResponseParser(p *ResponseParser) Option {
	return func(c *Client) { c.parser = p }
}

// WithAuditRecorder receives a redacted record of every purchase
func WithAuditRecorder(r ports.AuditRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithClock overrides the clock used for audit timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient validates cfg before anything else; a missing field is a configuration error
func NewClient(cfg ClientConfig, transport ports.Transport, tokens ports.TokenStore, logger *zap.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, domain.NewConfigurationError("transport is required")
	}
	if tokens == nil {
		return nil, domain.NewConfigurationError("token store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		config:    cfg,
		transport: transport,
		tokens:    tokens,
		builder:   NewMessageBuilder(),
		parser:    NewResponseParser(NewRedactor()),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SessionToken returns a valid session token, logging in when the store has none
func (c *Client) SessionToken(ctx context.Context) (string, error) {
	if token, ok := c.tokens.Get(ctx); ok {
		c.logger.Debug("Using cached Vanco session token",
			zap.Time("obtained_at", token.ObtainedAt),
		)
		return token.Value, nil
	}

	c.logger.Info("No valid Vanco session token cached, logging in",
		zap.String("login", c.config.Login),
	)

	env := c.builder.LoginRequest(Credentials{UserID: c.config.Login, Password: c.config.Password})
	body, err := env.Marshal()
	if err != nil {
		return "", err
	}

	resp, err := c.post(ctx, operationLogin, env.Auth.RequestID, body)
	if err != nil {
		return "", err
	}

	value, err := c.parser.ExtractToken(resp)
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(operationLogin, "protocol_error").Inc()
		c.logger.Error("Failed to extract session token from login response",
			zap.String("request_id", env.Auth.RequestID),
			zap.Error(err),
		)
		return "", err
	}
	gatewayRequestsTotal.WithLabelValues(operationLogin, "success").Inc()

	// The token is still used when it cannot be cached.
	if _, err := c.tokens.Put(ctx, value); err != nil {
		c.logger.Warn("Failed to cache Vanco session token", zap.Error(err))
	}

	c.logger.Info("Obtained new Vanco session token",
		zap.String("request_id", env.Auth.RequestID),
	)
	return value, nil
}

// Purchase charges a credit card across one or more funds.
//
// A declined payment is returned as a result with Success=false and a nil error.
// Errors are reserved for validation, transport and protocol failures.
func (c *Client) Purchase(ctx context.Context, req *domain.PurchaseRequest) (*domain.TransactionResult, error) {
	if req == nil {
		return nil, domain.NewValidationError("purchase request is required")
	}
	if err := req.Validate(); err != nil {
		c.logger.Error("Invalid Vanco purchase request", zap.Error(err))
		return nil, err
	}

	token, err := c.SessionToken(ctx)
	if err != nil {
		return nil, err
	}

	env := c.builder.TransactionRequest(
		token,
		c.config.ClientID,
		req.Customer,
		req.Instrument,
		req.Funds,
		req.Schedule,
	)
	body, err := env.Marshal()
	if err != nil {
		return nil, err
	}

	c.logger.Info("Processing Vanco purchase",
		zap.String("request_id", env.Auth.RequestID),
		zap.Int("funds", len(req.Funds)),
		zap.String("total", FormatAmount(req.Total())),
	)

	startedAt := c.now()
	resp, err := c.post(ctx, operationPurchase, env.Auth.RequestID, body)
	if err != nil {
		return nil, err
	}

	result, err := c.parser.Parse(resp, body)
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(operationPurchase, "protocol_error").Inc()
		c.logger.Error("Failed to parse Vanco purchase response",
			zap.String("request_id", env.Auth.RequestID),
			zap.Error(err),
		)
		return nil, err
	}

	outcome := "success"
	if !result.Success {
		outcome = "declined"
	}
	gatewayRequestsTotal.WithLabelValues(operationPurchase, outcome).Inc()

	c.logger.Info("Vanco purchase completed",
		zap.String("request_id", env.Auth.RequestID),
		zap.Bool("success", result.Success),
		zap.Ints("error_codes", result.ErrorCodes()),
	)

	c.record(ctx, &ports.AuditRecord{
		ID:            uuid.New(),
		Operation:     operationPurchase,
		RequestID:     env.Auth.RequestID,
		Request:       result.RawRequest,
		Response:      result.RawResponse,
		Success:       result.Success,
		ErrorCodes:    result.ErrorCodes(),
		CustomerID:    result.CustomerID,
		PaymentID:     result.PaymentID,
		TransactionID: result.TransactionID,
		StartedAt:     startedAt,
		Duration:      c.now().Sub(startedAt),
	})

	return result, nil
}

// post sends body with the headers every gateway request needs
func (c *Client) post(ctx context.Context, operation, requestID string, body []byte) ([]byte, error) {
	headers := map[string]string{
		"Content-Type":   "text/xml; charset=utf-8",
		"Content-Length": strconv.Itoa(len(body)),
	}

	start := time.Now()
	resp, err := c.transport.Post(ctx, c.config.URL, body, headers)
	gatewayRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(operation, "transport_error").Inc()
		c.logger.Error("Vanco request failed",
			zap.String("operation", operation),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		if !domain.IsTransportError(err) {
			err = domain.NewTransportError(fmt.Sprintf("%s request failed", operation), err)
		}
		return nil, err
	}

	c.logger.Debug("Received Vanco response",
		zap.String("operation", operation),
		zap.String("request_id", requestID),
		zap.Int("body_length", len(resp)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) record(ctx context.Context, rec *ports.AuditRecord) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.logger.Warn("Failed to record Vanco audit entry",
			zap.String("audit_id", rec.ID.String()),
			zap.Error(err),
		)
	}
}
