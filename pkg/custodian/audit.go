package custodian

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// AuditService provides read access to the custodian audit log.
type AuditService struct {
	client *Client
}

// AuditQuery filters and paginates audit-log listings. The zero value
// returns the first page with the server's default limit.
type AuditQuery struct {
	Event        string
	ResourceType string
	ResourceID   *uuid.UUID
	Limit        int
	Offset       int
}

// List returns one page of audit-log entries, newest first.
func (s *AuditService) List(ctx context.Context, query AuditQuery) (*AuditPage, error) {
	params := url.Values{}
	if query.Event != "" {
		params.Set("event", query.Event)
	}
	if query.ResourceType != "" {
		params.Set("resource_type", query.ResourceType)
	}
	if query.ResourceID != nil {
		params.Set("resource_id", query.ResourceID.String())
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}

	path := "/v1/audit"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page AuditPage
	if err := s.client.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
