package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"livedev/internal/content"
	"livedev/pkg/utils"
)

// NotFoundPage is looked up in the root for 404 responses.
const NotFoundPage = "404.html"

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	pathname := r.URL.Path

	target, err := s.resolver.Target(pathname)
	if err != nil {
		s.forbidden(w, r)
		return
	}

	if !strings.HasSuffix(pathname, "/") && utils.IsDirNoFollow(target) {
		w.Header().Set("Location", pathname+"/")
		w.WriteHeader(http.StatusMovedPermanently)
		return
	}

	filePath, err := s.resolver.Resolve(pathname)
	if err != nil {
		s.forbidden(w, r)
		return
	}

	if utils.IsDir(filePath) {
		s.serveListing(w, r, filePath)
		return
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if isNotFound(err) {
			s.notFound(w, r)
			return
		}
		s.internalError(w, r, err)
		return
	}

	contentType := content.ContentType(filePath)
	if s.config.Live && content.IsHTML(contentType) {
		data = s.injector.Inject(data)
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func isNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)

	page, err := os.ReadFile(filepath.Join(s.resolver.Root, NotFoundPage))
	if err != nil {
		return
	}
	w.Write(page)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.logger.Warning("Blocked path traversal", map[string]interface{}{
		"path":       r.URL.Path,
		"remote":     getRealIP(r),
		"request_id": w.Header().Get("X-Request-ID"),
	})
	http.Error(w, "Forbidden", http.StatusForbidden)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Read failed", map[string]interface{}{
		"path":       r.URL.Path,
		"error":      err,
		"request_id": w.Header().Get("X-Request-ID"),
	})
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
