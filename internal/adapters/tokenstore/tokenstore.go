// Package tokenstore holds the TokenStore implementations. All of them persist
// {value, obtained_at} and decide validity from obtained_at on every read.
package tokenstore

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kevin07696/vanco-gateway/internal/domain"
	"github.com/kevin07696/vanco-gateway/pkg/timeutil"
)

var (
	tokenCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanco_token_cache_hits_total",
		Help: "Total number of session token cache hits",
	}, []string{"store"})

	tokenCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanco_token_cache_misses_total",
		Help: "Total number of session token cache misses",
	}, []string{"store", "reason"}) // not_found, expired, error

	tokenCacheWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanco_token_cache_writes_total",
		Help: "Total number of session token writes",
	}, []string{"store", "result"})
)

const (
	missNotFound = "not_found"
	missExpired  = "expired"
	missError    = "error"
)

// Option configures the expiry policy shared by every store
type Option func(*policy)

// WithTTL overrides DefaultTokenTTL
func WithTTL(ttl time.Duration) Option {
	return func(p *policy) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithClock overrides the clock used for ObtainedAt and validity checks
func WithClock(now func() time.Time) Option {
	return func(p *policy) { p.now = now }
}

type policy struct {
	ttl  time.Duration
	now  func() time.Time
	name string
}

func newPolicy(name string, opts []Option) policy {
	p := policy{ttl: domain.DefaultTokenTTL, now: timeutil.Now, name: name}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// accept records the hit/miss and reports whether token may be handed out
func (p policy) accept(token *domain.SessionToken) bool {
	if !token.ValidAt(p.now(), p.ttl) {
		tokenCacheMisses.WithLabelValues(p.name, missExpired).Inc()
		return false
	}
	tokenCacheHits.WithLabelValues(p.name).Inc()
	return true
}

func (p policy) miss(reason string) {
	tokenCacheMisses.WithLabelValues(p.name, reason).Inc()
}

func (p policy) wrote(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	tokenCacheWrites.WithLabelValues(p.name, result).Inc()
}

func (p policy) issue(value string) *domain.SessionToken {
	return &domain.SessionToken{Value: value, ObtainedAt: p.now()}
}

func encodeToken(token *domain.SessionToken) ([]byte, error) {
	return sonic.Marshal(token)
}

func decodeToken(data []byte) (*domain.SessionToken, error) {
	var token domain.SessionToken
	if err := sonic.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
