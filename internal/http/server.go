// Package http provides the policybot web front-end and JSON API.
package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/policybot/internal/assistant"
	"github.com/fyrsmithlabs/policybot/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed static/index.html
var indexHTML []byte

// Assistant is the application service behind the HTTP handlers.
type Assistant interface {
	Upload(ctx context.Context, filename string, src io.Reader) (assistant.UploadResult, error)
	Ask(ctx context.Context, question string) (assistant.Answer, error)
}

// Server provides HTTP endpoints for policybot.
type Server struct {
	echo      *echo.Echo
	assistant Assistant
	counter   DocumentCounter
	logger    *zap.Logger
	config    *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// MaxUploadMB caps request bodies. Default: 32
	MaxUploadMB int
}

// NewServer creates a new HTTP server. counter is optional and only feeds
// the document count reported by /health.
func NewServer(svc Assistant, counter DocumentCounter, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("assistant cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "0.0.0.0",
			Port: 5000,
		}
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), requestID)))

			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", requestID),
			)

			return err
		}
	})
	e.Use(defaultRequestMetrics(logger).middleware())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))

	s := &Server{
		echo:      e,
		assistant: svc,
		counter:   counter,
		logger:    logger,
		config:    cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.POST("/upload", s.handleUpload)
	s.echo.POST("/query", s.handleQuery)

	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Documents: countDocuments(c.Request().Context(), s.counter),
	})
}

// handleUpload stores the multipart "file" part and indexes it.
func (s *Server) handleUpload(c echo.Context) error {
	fh, err := uploadedFile(c)
	if err != nil {
		return s.respondError(c, err)
	}

	f, err := fh.Open()
	if err != nil {
		return s.respondError(c, &assistant.DependencyError{Op: "save", Err: err})
	}
	defer f.Close()

	res, err := s.assistant.Upload(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Success: fmt.Sprintf("File %s successfully uploaded and added to the bot", res.Filename),
	})
}

// uploadedFile returns the "file" part of a multipart request. A part sent
// with an empty filename is parsed as a plain form value, which is how an
// empty file input arrives.
func uploadedFile(c echo.Context) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, assistant.ErrNoFilePart
	}
	if files := form.File["file"]; len(files) > 0 {
		if files[0].Filename == "" {
			return nil, assistant.ErrNoFileSelected
		}
		return files[0], nil
	}
	if _, ok := form.Value["file"]; ok {
		return nil, assistant.ErrNoFileSelected
	}
	return nil, assistant.ErrNoFilePart
}

// handleQuery answers the "question" field of the request body. URL query
// parameters are ignored.
func (s *Server) handleQuery(c echo.Context) error {
	answer, err := s.assistant.Ask(c.Request().Context(), c.Request().PostFormValue("question"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, QueryResponse{Response: answer.Text})
}

// respondError maps assistant errors onto status codes. Dependency failures
// return the underlying error text.
func (s *Server) respondError(c echo.Context, err error) error {
	if errors.Is(err, assistant.ErrInvalidInput) {
		s.logger.Debug("rejected request", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	msg := err.Error()
	var depErr *assistant.DependencyError
	if errors.As(err, &depErr) {
		msg = depErr.Err.Error()
	}
	s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
