package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"

	"livedev/internal/auth"
	"livedev/internal/config"
	"livedev/internal/content"
	"livedev/internal/livereload"
	"livedev/internal/logging"
	"livedev/internal/metrics"
)

// Server serves one root directory and the live-reload endpoints for it.
type Server struct {
	// Banner receives the human readable startup lines. Defaults to stdout.
	Banner io.Writer

	config   *config.Config
	logger   *logging.Logger
	resolver *content.Resolver
	injector *livereload.Injector
	registry *livereload.Registry
	live     *livereload.Handler
	metrics  *metrics.Collector
	auth     *auth.AuthManager
	handler  http.Handler

	mu       sync.Mutex
	started  bool
	srv      *http.Server
	listener net.Listener
	protocol string
	done     chan struct{}
	serveErr error
}

// New создает новый экземпляр сервера
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	root, err := content.ResolveRoot(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	collector := metrics.NewCollector()
	registry := livereload.NewRegistry(collector)

	srv := &Server{
		Banner:   os.Stdout,
		config:   cfg,
		logger:   logger,
		resolver: &content.Resolver{Root: root, Fallback: cfg.Fallback},
		injector: livereload.NewInjector(cfg.EventPath),
		registry: registry,
		live:     livereload.NewHandler(registry, logger),
		metrics:  collector,
		protocol: "http",
		done:     make(chan struct{}),
	}

	if cfg.Auth != "" {
		am, err := auth.NewAuthManager(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("configure auth: %w", err)
		}
		srv.auth = am
	}

	srv.handler = srv.createHandler()
	return srv, nil
}

// Start binds the listener and begins serving in the background. Calling it
// again after a successful start does nothing. Cancelling ctx closes the
// server without draining open streams.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	tlsConfig := s.selectTransport()

	ln, err := listen(s.config.Host, s.config.Port, s.logger)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	s.srv = &http.Server{
		Handler:     s.handler,
		ReadTimeout: s.config.Server.ReadTimeout,
		IdleTimeout: s.config.Server.IdleTimeout,
		// Event streams stay open until the next broadcast.
		WriteTimeout: 0,
		TLSConfig:    tlsConfig,
	}
	s.listener = ln
	s.started = true

	serveLn := ln
	if tlsConfig != nil {
		s.protocol = "https"
		serveLn = tls.NewListener(ln, tlsConfig)
	}

	go func() {
		err := s.srv.Serve(serveLn)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", map[string]interface{}{
				"error": err,
			})
			s.serveErr = err
		}
		close(s.done)
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	s.logger.Info("Server started", map[string]interface{}{
		"address":  ln.Addr().String(),
		"protocol": s.protocol,
		"root":     s.resolver.Root,
		"live":     s.config.Live,
	})
	s.printBanner()
	return nil
}

// Update pushes a reload to every connected browser and returns how many
// were notified.
func (s *Server) Update() int {
	delivered := s.registry.Broadcast()
	s.logger.Info("Reload broadcast", map[string]interface{}{
		"clients": delivered,
	})
	return delivered
}

// Wait blocks until the server stops serving. It returns immediately when the
// server was never started.
func (s *Server) Wait() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}
	<-s.done
	return s.serveErr
}

// Close stops the server immediately, dropping open connections.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Close()
}

// Addr returns the bound address, nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the bound port, or the configured one before Start.
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return s.config.Port
}

// Protocol returns "http" or "https".
func (s *Server) Protocol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocol
}

// URL returns the local address browsers should open.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlLocked(s.config.Host)
}

// Handler returns the full middleware chain, usable without Start.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Root returns the absolute directory being served.
func (s *Server) Root() string {
	return s.resolver.Root
}

// Metrics returns the collector of this instance.
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

// Clients reports how many browsers are waiting on the event stream.
func (s *Server) Clients() int {
	return s.registry.Len()
}
