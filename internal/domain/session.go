package domain

import "time"

// DefaultTokenTTL is how long a cached session token is trusted.
// The gateway advertises 24 hours but sessions were observed to expire much earlier,
// so 30 minutes is used. Tunable via configuration.
const DefaultTokenTTL = 30 * time.Minute

// SessionToken is the credential returned by a Login exchange
type SessionToken struct {
	ObtainedAt time.Time `json:"obtained_at"`
	Value      string    `json:"value"`
}

// ValidAt reports whether the token may still be used at now under the given TTL.
// Valid on [ObtainedAt, ObtainedAt+ttl).
func (t *SessionToken) ValidAt(now time.Time, ttl time.Duration) bool {
	if t == nil || t.Value == "" {
		return false
	}
	if now.Before(t.ObtainedAt) {
		// Clock skew between processes sharing the cache; a token from the future is not trusted.
		return false
	}
	return now.Sub(t.ObtainedAt) < ttl
}

// ExpiresAt returns the instant the token stops being valid
func (t *SessionToken) ExpiresAt(ttl time.Duration) time.Time {
	return t.ObtainedAt.Add(ttl)
}
