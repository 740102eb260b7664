package path

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrInvalidPath   = errors.New("path format is invalid")
	ErrPathTraversal = errors.New("path contains directory traversal")
)

// NormalizeFolder turns a user-supplied folder into a canonical relative path:
// backslashes become slashes, empty segments are dropped (which collapses runs
// of separators and strips leading/trailing ones) and surrounding whitespace is
// trimmed from every segment. Blank input yields "".
//
// Segments made only of dots ("." / ".." / "...") and NUL bytes are rejected so
// the result can never escape the directory it is joined to.
func NormalizeFolder(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	parts := strings.Split(strings.ReplaceAll(raw, `\`, "/"), "/")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := validateSegment(part); err != nil {
			return "", err
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/"), nil
}

func validateSegment(part string) error {
	if strings.Trim(part, ".") == "" {
		return ErrPathTraversal
	}
	if strings.Contains(part, "\x00") {
		return ErrInvalidPath
	}
	return nil
}

// ValidatePath validates a slash separated request path.
// It checks for:
// - Empty paths
// - Directory traversal attempts
// - NUL bytes
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if path == "/" {
		return nil
	}

	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue // Allow empty parts (for leading/trailing slashes)
		}
		if err := validateSegment(part); err != nil {
			return err
		}
	}

	return nil
}
