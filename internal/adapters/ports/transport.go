package ports

import "context"

// Transport posts a request body to the gateway and returns the raw response body.
// Connection-level failures and non-2xx statuses are returned as transport errors.
// Timeouts are the transport's concern; no retries happen at this layer.
type Transport interface {
	Post(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, error)
}
