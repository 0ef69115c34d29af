// Package webui serves the web form that drives panorama generation.
package webui

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pano_backend/db"
	"pano_backend/generator"
	"pano_backend/logging"
	"pano_backend/webui/auth"
)

// RequestHandler runs a generation request. Satisfied by
// *generator.Orchestrator.
type RequestHandler interface {
	HandleRequest(ctx context.Context, req generator.Request) generator.Result
}

// HistoryLister reads recent generation history. Satisfied by
// *db.Repository. May be nil when history is disabled.
type HistoryLister interface {
	Recent(ctx context.Context, limit int) ([]db.GenerationRecord, error)
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string
	Port int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// PasswordHash enables basic auth when non-empty (bcrypt hash).
	PasswordHash []byte
}

// DefaultServerConfig returns server defaults for the given port.
// WriteTimeout is deliberately unset: a generation request can hold the
// response open for minutes on CPU backends.
func DefaultServerConfig(port int) ServerConfig {
	return ServerConfig{
		Host:            "",
		Port:            port,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    0,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server is the web UI boundary.
type Server struct {
	config     ServerConfig
	handler    RequestHandler
	history    HistoryLister
	logger     *logging.Logger
	templates  *template.Template
	httpServer *http.Server
}

// NewServer builds a Server. history may be nil.
func NewServer(config ServerConfig, handler RequestHandler, history HistoryLister, logger *logging.Logger) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		config:    config,
		handler:   handler,
		history:   history,
		logger:    logger.Named("webui"),
		templates: templates,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s, nil
}

// Handler returns the full route tree with middleware applied. Exposed for
// tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleForm)
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/history", s.handleHistory)

	// Health stays outside auth so probes work without credentials.
	root := http.NewServeMux()
	root.HandleFunc("/health", s.handleHealth)
	root.Handle("/", s.authMiddleware(mux))

	return s.loggingMiddleware(root)
}

// Start runs the HTTP server until Shutdown or a fatal listener error.
func (s *Server) Start() error {
	s.logger.Info("web UI listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) verifyPassword(password string) bool {
	return auth.VerifyPassword(s.config.PasswordHash, password)
}
