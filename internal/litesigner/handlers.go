package litesigner

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-remotesigner/internal/util"
	"github/chapool/go-remotesigner/pkg/custodian"
)

// data wraps every successful response body.
func data(c echo.Context, status int, payload any) error {
	return c.JSON(status, map[string]any{"data": payload})
}

// apiError writes the structured error body the SDK client parses.
func apiError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return apiError(c, http.StatusNotFound, "not_found", "key not found")
	case errors.Is(err, ErrDuplicateName):
		return apiError(c, http.StatusConflict, "conflict", err.Error())
	default:
		return apiError(c, http.StatusInternalServerError, "internal", err.Error())
	}
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) postKey(c echo.Context) error {
	ctx := c.Request().Context()

	var body custodian.CreateKeyRequest
	if err := c.Bind(&body); err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if body.Name == "" {
		return apiError(c, http.StatusBadRequest, "invalid_request", "name is required")
	}

	key, err := s.Keys.CreateKey(ctx, body.Name, body.NamespaceID, util.FalseIfNil(body.Exportable), body.Metadata)
	if err != nil {
		return serviceError(c, err)
	}

	s.Metrics.KeysCreated.Inc()
	s.Audit.Record(ctx, "key.create", "key", &key.ID, map[string]any{"name": key.Name})

	return data(c, http.StatusCreated, key)
}

func (s *Server) postKeyBatch(c echo.Context) error {
	ctx := c.Request().Context()

	var body custodian.CreateKeyBatchRequest
	if err := c.Bind(&body); err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if body.Prefix == "" {
		return apiError(c, http.StatusBadRequest, "invalid_request", "prefix is required")
	}
	if body.Count <= 0 {
		return apiError(c, http.StatusBadRequest, "invalid_request", "count must be positive")
	}

	keys, err := s.Keys.CreateBatch(ctx, body.Prefix, body.Count, body.NamespaceID, util.FalseIfNil(body.Exportable))
	if err != nil {
		return serviceError(c, err)
	}

	s.Metrics.KeysCreated.Add(float64(len(keys)))
	s.Audit.Record(ctx, "key.create_batch", "key", nil, map[string]any{
		"prefix": body.Prefix,
		"count":  body.Count,
	})

	return data(c, http.StatusCreated, map[string]any{"keys": keys})
}

func (s *Server) getKeys(c echo.Context) error {
	var namespaceID *uuid.UUID
	if raw := c.QueryParam("namespace_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apiError(c, http.StatusBadRequest, "invalid_request", "malformed namespace_id")
		}
		namespaceID = &id
	}

	keys, err := s.Keys.ListKeys(c.Request().Context(), namespaceID)
	if err != nil {
		return serviceError(c, err)
	}

	return data(c, http.StatusOK, keys)
}

func (s *Server) getKey(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed key id")
	}

	key, err := s.Keys.GetKey(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}

	return data(c, http.StatusOK, key)
}

func (s *Server) getKeyByName(c echo.Context) error {
	namespaceID, ok := parseIDParam(c, "namespace")
	if !ok {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed namespace id")
	}

	key, err := s.Keys.GetKeyByName(c.Request().Context(), namespaceID, c.Param("name"))
	if err != nil {
		return serviceError(c, err)
	}

	return data(c, http.StatusOK, key)
}

func (s *Server) deleteKey(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed key id")
	}

	if err := s.Keys.DeleteKey(ctx, id); err != nil {
		return serviceError(c, err)
	}

	s.Audit.Record(ctx, "key.delete", "key", &id, nil)

	return c.NoContent(http.StatusNoContent)
}

type signRequest struct {
	Data      string `json:"data"`
	Prehashed bool   `json:"prehashed"`
}

func (s *Server) postSign(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed key id")
	}

	var body signRequest
	if err := c.Bind(&body); err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
	}

	payload, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "data must be base64")
	}

	signature, publicKey, err := s.Keys.Sign(ctx, id, payload, body.Prehashed)
	if err != nil {
		s.Metrics.SignRequests.WithLabelValues("failure").Inc()
		if errors.Is(err, ErrKeyNotFound) {
			return serviceError(c, err)
		}
		return apiError(c, http.StatusBadRequest, "invalid_request", err.Error())
	}

	s.Metrics.SignRequests.WithLabelValues("success").Inc()
	s.Audit.Record(ctx, "key.sign", "key", &id, map[string]any{"prehashed": body.Prehashed})

	return data(c, http.StatusOK, map[string]any{
		"signature":  base64.StdEncoding.EncodeToString(signature),
		"public_key": publicKey,
	})
}

func (s *Server) postVerify(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed key id")
	}

	var body struct {
		Data      string `json:"data"`
		Signature string `json:"signature"`
		Prehashed bool   `json:"prehashed"`
	}
	if err := c.Bind(&body); err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
	}

	payload, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "data must be base64")
	}
	signature, err := base64.StdEncoding.DecodeString(body.Signature)
	if err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "signature must be base64")
	}

	valid, err := s.Keys.Verify(c.Request().Context(), id, payload, signature, body.Prehashed)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return serviceError(c, err)
		}
		return apiError(c, http.StatusBadRequest, "invalid_request", err.Error())
	}

	return data(c, http.StatusOK, map[string]any{"valid": valid})
}

type batchSignItem struct {
	KeyID     uuid.UUID `json:"key_id"`
	Data      string    `json:"data"`
	Prehashed bool      `json:"prehashed"`
}

type batchSignResult struct {
	KeyID     uuid.UUID `json:"key_id"`
	Signature string    `json:"signature,omitempty"`
	PublicKey string    `json:"public_key,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (s *Server) postSignBatch(c echo.Context) error {
	ctx := c.Request().Context()

	var body struct {
		Requests []batchSignItem `json:"requests"`
	}
	if err := c.Bind(&body); err != nil {
		return apiError(c, http.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if len(body.Requests) == 0 {
		return apiError(c, http.StatusBadRequest, "invalid_request", "requests must not be empty")
	}

	results := make([]batchSignResult, 0, len(body.Requests))
	for _, item := range body.Requests {
		result := batchSignResult{KeyID: item.KeyID}

		payload, err := base64.StdEncoding.DecodeString(item.Data)
		if err != nil {
			result.Error = "data must be base64"
			s.Metrics.SignRequests.WithLabelValues("failure").Inc()
			results = append(results, result)
			continue
		}

		signature, publicKey, err := s.Keys.Sign(ctx, item.KeyID, payload, item.Prehashed)
		if err != nil {
			result.Error = err.Error()
			s.Metrics.SignRequests.WithLabelValues("failure").Inc()
		} else {
			result.Signature = base64.StdEncoding.EncodeToString(signature)
			result.PublicKey = publicKey
			s.Metrics.SignRequests.WithLabelValues("success").Inc()
		}

		results = append(results, result)
	}

	s.Audit.Record(ctx, "key.sign_batch", "key", nil, map[string]any{"count": len(body.Requests)})

	return data(c, http.StatusOK, map[string]any{"signatures": results})
}

func (s *Server) org() custodian.Organization {
	return custodian.Organization{
		ID:        defaultOrgID(),
		Name:      "Lite Signer",
		Slug:      "litesigner",
		Plan:      "self-hosted",
		CreatedAt: time.Time{},
	}
}

func (s *Server) getOrgs(c echo.Context) error {
	return data(c, http.StatusOK, []custodian.Organization{s.org()})
}

func (s *Server) getOrg(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok || id != defaultOrgID() {
		return apiError(c, http.StatusNotFound, "not_found", "organization not found")
	}
	return data(c, http.StatusOK, s.org())
}

func (s *Server) getNamespaces(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok || id != defaultOrgID() {
		return apiError(c, http.StatusNotFound, "not_found", "organization not found")
	}

	return data(c, http.StatusOK, []custodian.Namespace{{
		ID:    s.Keys.DefaultNamespaceID(),
		Name:  "default",
		OrgID: defaultOrgID(),
	}})
}

func (s *Server) getAudit(c echo.Context) error {
	query := custodian.AuditQuery{
		Event:        c.QueryParam("event"),
		ResourceType: c.QueryParam("resource_type"),
	}

	if raw := c.QueryParam("resource_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apiError(c, http.StatusBadRequest, "invalid_request", "malformed resource_id")
		}
		query.ResourceID = &id
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return apiError(c, http.StatusBadRequest, "invalid_request", "malformed limit")
		}
		query.Limit = limit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return apiError(c, http.StatusBadRequest, "invalid_request", "malformed offset")
		}
		query.Offset = offset
	}

	return data(c, http.StatusOK, s.Audit.List(c.Request().Context(), query))
}
