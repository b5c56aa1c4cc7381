package custodian

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OrgsService handles organization and namespace queries.
type OrgsService struct {
	client *Client
}

// List returns every organization visible to the caller.
func (s *OrgsService) List(ctx context.Context) ([]*Organization, error) {
	var orgs []*Organization
	if err := s.client.get(ctx, "/v1/orgs", &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Get fetches an organization by identifier.
func (s *OrgsService) Get(ctx context.Context, orgID uuid.UUID) (*Organization, error) {
	var org Organization
	if err := s.client.get(ctx, fmt.Sprintf("/v1/orgs/%s", orgID), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListNamespaces returns the namespaces of an organization.
func (s *OrgsService) ListNamespaces(ctx context.Context, orgID uuid.UUID) ([]*Namespace, error) {
	var namespaces []*Namespace
	if err := s.client.get(ctx, fmt.Sprintf("/v1/orgs/%s/namespaces", orgID), &namespaces); err != nil {
		return nil, err
	}
	return namespaces, nil
}
