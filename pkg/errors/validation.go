package errors

import (
	"strings"
	"unicode"
)

// ValidateEntryPath validates a slash-delimited path from a revision tree.
//
// The rules mirror what the tree normalizer can attach:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No control characters or backslashes
//   - No leading or trailing slash and no empty segments
//   - No "." or ".." segments
func ValidateEntryPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "":
			return New(ErrCodeInvalidPath, "path %q has an empty segment", path)
		case ".", "..":
			return New(ErrCodeInvalidPath, "path %q contains a relative segment", path)
		}
	}

	return nil
}
