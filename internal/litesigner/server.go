package litesigner

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github/chapool/go-remotesigner/internal/config"
	"github/chapool/go-remotesigner/internal/litesigner/keystore"
)

// Server bundles the HTTP server and its dependencies.
type Server struct {
	Config  config.Service
	Echo    *echo.Echo
	Keys    Service
	Audit   *AuditLog
	Metrics *Metrics

	logger zerolog.Logger
}

// NewServer wires the lite signer from config. Initialize must be called
// before Start.
func NewServer(cfg config.Service) (*Server, error) {
	if cfg.Echo.APIKey == "" {
		return nil, errors.New("no API key configured, set LITESIGNER_API_KEY")
	}

	params := keystore.DefaultScryptParams()
	if cfg.Keystore.LightKDF {
		params = keystore.LightScryptParams()
	}

	store, err := keystore.NewService(cfg.Keystore.Path, cfg.Keystore.Passphrase, params)
	if err != nil {
		return nil, err
	}

	keys, err := NewService(store)
	if err != nil {
		return nil, err
	}

	return &Server{
		Config: cfg,
		Keys:   keys,
		Audit:  NewAuditLog(),
		logger: cfg.Logger.New(),
	}, nil
}

// Initialize opens the keystore and builds the echo instance with all
// routes attached.
func (s *Server) Initialize(ctx context.Context) error {
	if err := s.Keys.Initialize(ctx); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	s.Metrics = NewMetrics(registry)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())
	if len(s.Config.Echo.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.Config.Echo.CORSAllowedOrigins,
		}))
	}
	if s.Config.Echo.EnableMetrics {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "litesigner",
			Registerer: registry,
		}))
		e.GET("/-/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: registry,
		}))
	}

	e.GET("/-/healthy", s.getHealthy)
	e.GET("/-/ready", s.getReady)

	v1 := e.Group("/v1", s.requireAPIKey)
	v1.POST("/keys", s.postKey)
	v1.POST("/keys/batch", s.postKeyBatch)
	v1.GET("/keys", s.getKeys)
	v1.GET("/keys/:id", s.getKey)
	v1.GET("/keys/by-name/:namespace/:name", s.getKeyByName)
	v1.DELETE("/keys/:id", s.deleteKey)
	v1.POST("/keys/:id/sign", s.postSign)
	v1.POST("/keys/:id/verify", s.postVerify)
	v1.POST("/sign/batch", s.postSignBatch)
	v1.GET("/orgs", s.getOrgs)
	v1.GET("/orgs/:id", s.getOrg)
	v1.GET("/orgs/:id/namespaces", s.getNamespaces)
	v1.GET("/audit", s.getAudit)

	s.Echo = e
	return nil
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	if s.Echo == nil {
		return errors.New("server is not initialized")
	}

	s.logger.Info().Str("addr", s.Config.Echo.ListenAddress).Msg("Lite signer listening")

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Warn().Msg("Shutting down lite signer")

	if s.Echo != nil {
		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to shutdown echo server")
		}
	}
	return nil
}

// requestLogger attaches the server logger to the request context and logs
// request completion.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			logger := s.logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			start := time.Now()
			err := next(c)

			logger.Debug().
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Err(err).
				Msg("Request handled")

			return err
		}
	}
}

// requireAPIKey enforces bearer-token auth on the API routes.
func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.Config.Echo.APIKey)) != 1 {
			return apiError(c, http.StatusUnauthorized, "unauthorized", "invalid or missing API key")
		}
		return next(c)
	}
}

func (s *Server) getHealthy(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) getReady(c echo.Context) error {
	if s.Keys == nil || s.Echo == nil {
		return c.String(http.StatusServiceUnavailable, "Not ready")
	}
	return c.String(http.StatusOK, "Ready")
}
