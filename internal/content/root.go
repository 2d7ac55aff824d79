package content

import (
	"path/filepath"

	"livedev/pkg/utils"
)

// DefaultPublicDir is preferred over the working directory when it exists.
const DefaultPublicDir = "public"

// ResolveRoot picks the directory to serve. An empty or "." root becomes
// ./public when that directory exists. The result is absolute.
func ResolveRoot(root string) (string, error) {
	if root == "" || root == "." {
		if utils.IsDir(DefaultPublicDir) {
			root = DefaultPublicDir
		} else {
			root = "."
		}
	}
	return filepath.Abs(root)
}
