// Package server provides the HTTP API for ago.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spetersoncode/ago/internal/reltime"
)

// Config holds the server configuration.
type Config struct {
	// Port is the TCP port to listen on (default 18081).
	Port int

	// Host is the address to bind to (default "localhost").
	Host string

	// DB is the marks database connection.
	DB *sql.DB

	// Clock is the reference "now" for relative text (default reltime.SystemClock).
	Clock reltime.Clock

	// Abbreviate is the default for the abbrev query parameter.
	Abbreviate bool

	// Logger for server events (optional).
	Logger *log.Logger
}

// Server is the HTTP server for the ago API.
type Server struct {
	config     Config
	httpServer *http.Server
	router     *http.ServeMux
	formatter  *reltime.Formatter
	logger     *log.Logger
	listener   net.Listener
}

// New creates a new Server with the given configuration.
func New(config Config) (*Server, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if config.Port == 0 {
		config.Port = 18081
	}
	if config.Host == "" {
		config.Host = "localhost"
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[ago-server] ", log.LstdFlags)
	}

	s := &Server{
		config:    config,
		router:    http.NewServeMux(),
		formatter: reltime.New(config.Clock),
		logger:    logger,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the server's HTTP handler, with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

// Listen binds the configured address. Start calls it if needed.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	return nil
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.logger.Printf("Starting server at http://%s", s.listener.Addr())

	err := s.httpServer.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Printf("Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the listening address, or the configured one before Listen.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
