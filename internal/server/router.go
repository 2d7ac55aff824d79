package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"livedev/internal/security"
)

// createHandler создает HTTP handler с middleware
func (s *Server) createHandler() http.Handler {
	router := mux.NewRouter()
	// ".." must reach the static handler so it can answer 403 instead of
	// being redirected to a cleaned path.
	router.SkipClean(true)

	if s.config.Live {
		router.HandleFunc(s.config.EventPath, s.live.Stream)
		router.HandleFunc(s.config.EventPath+"-update", s.live.Update)
	}
	if s.config.Metrics {
		router.Handle(s.config.EventPath+"-metrics", s.metrics.Handler())
	}

	router.PathPrefix("/").HandlerFunc(s.serveStatic)

	// Применяем middleware (снизу вверх):
	// 1. Security headers
	// 2. Basic auth
	// 3. Metrics
	// 4. Panic recovery
	// 5. Logging
	var handler http.Handler = security.SecurityHeadersMiddleware(router)
	if s.auth != nil {
		handler = s.auth.Middleware(handler)
	}
	handler = s.metrics.HTTPMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	handler = s.loggingMiddleware(handler)

	return handler
}
