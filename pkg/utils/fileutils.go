package utils

import (
	"os"
	"strings"
)

// FileExists проверяет существует ли файл
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir проверяет является ли путь директорией
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsDirNoFollow is IsDir without following a final symlink.
func IsDirNoFollow(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// HasDotDot reports whether a slash-separated path contains a ".." segment.
func HasDotDot(p string) bool {
	if !strings.Contains(p, "..") {
		return false
	}
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
