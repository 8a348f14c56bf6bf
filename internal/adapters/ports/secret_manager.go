package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., gateway login password)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving secrets from a secret management service
// Supports multiple backends: local files, AWS Secrets Manager, HashiCorp Vault
//
// Used to resolve the gateway password at startup when VANCO_PASSWORD_SECRET is set.
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - Local: relative file path under the base directory
	//   - AWS: "vanco-gateway/password" or full ARN
	//   - Vault: "vanco-gateway/credentials" under the KV mount
	// Returns error if:
	//   - Secret does not exist
	//   - Insufficient permissions
	//   - Network communication fails
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
