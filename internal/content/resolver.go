// Package content maps request paths onto files below a served root.
package content

import (
	"errors"
	"path"
	"path/filepath"
	"strings"

	"livedev/pkg/utils"
)

const IndexFile = "index.html"

// ErrOutsideRoot is returned for request paths that would escape the root.
var ErrOutsideRoot = errors.New("path escapes served root")

// Resolver turns a URL pathname into a file system path.
type Resolver struct {
	Root     string
	Fallback string
}

// Target joins pathname onto the root without any index or extension rules.
func (r *Resolver) Target(pathname string) (string, error) {
	if utils.HasDotDot(pathname) {
		return "", ErrOutsideRoot
	}
	return filepath.Join(r.Root, filepath.FromSlash(path.Clean("/"+pathname))), nil
}

// Resolve returns the file to serve for pathname. The returned path is not
// guaranteed to exist; callers find out when they read it.
func (r *Resolver) Resolve(pathname string) (string, error) {
	target, err := r.Target(pathname)
	if err != nil {
		return "", err
	}

	if utils.IsDirNoFollow(target) {
		index := filepath.Join(target, IndexFile)
		if utils.FileExists(index) {
			return index, nil
		}
	}

	// Only the last segment decides whether the path has an extension.
	if !strings.HasSuffix(pathname, "/") && !strings.Contains(path.Base(pathname), ".") {
		if html := target + ".html"; utils.FileExists(html) {
			return html, nil
		}
	}

	if r.Fallback != "" && !utils.FileExists(target) && !strings.HasSuffix(pathname, "/") {
		return filepath.Join(r.Root, filepath.FromSlash(r.Fallback)), nil
	}

	return target, nil
}
