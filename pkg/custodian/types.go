package custodian

import (
	"time"

	"github.com/google/uuid"
)

// Key is a remotely custodied signing key. The private material never
// appears in any API response.
type Key struct {
	// ID is the stable key identifier.
	ID uuid.UUID `json:"id"`
	// Name is the display name, unique within a namespace.
	Name string `json:"name"`
	// NamespaceID is the namespace the key belongs to.
	NamespaceID uuid.UUID `json:"namespace_id"`
	// PublicKey is the hex-encoded compressed secp256k1 public key.
	PublicKey string `json:"public_key"`
	// Address is the bech32 account address derived from the public key.
	Address string `json:"address"`
	// Algorithm is the signing algorithm, currently always "secp256k1".
	Algorithm string `json:"algorithm"`
	// Exportable indicates whether the private key may leave the custodian.
	Exportable bool `json:"exportable"`
	// Metadata carries optional caller-defined labels.
	Metadata map[string]string `json:"metadata,omitempty"`
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// CreateKeyRequest describes a key to create. Exportable is optional and
// defaults to false when nil.
type CreateKeyRequest struct {
	Name        string            `json:"name"`
	NamespaceID uuid.UUID         `json:"namespace_id"`
	Algorithm   string            `json:"algorithm,omitempty"`
	Exportable  *bool             `json:"exportable,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CreateKeyBatchRequest creates count keys named "<prefix>-1" through
// "<prefix>-<count>" in one call.
type CreateKeyBatchRequest struct {
	Prefix      string    `json:"prefix"`
	Count       int       `json:"count"`
	NamespaceID uuid.UUID `json:"namespace_id"`
	Exportable  *bool     `json:"exportable,omitempty"`
}

// Organization is a billing and access boundary around namespaces.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// Namespace groups keys within an organization.
type Namespace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OrgID     uuid.UUID `json:"org_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry is a single audit-log record.
type AuditEntry struct {
	ID           uuid.UUID      `json:"id"`
	Event        string         `json:"event"`
	ActorID      *uuid.UUID     `json:"actor_id,omitempty"`
	ActorType    string         `json:"actor_type"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID     `json:"resource_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditPage is one page of audit-log records.
type AuditPage struct {
	Items  []AuditEntry `json:"items"`
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}
