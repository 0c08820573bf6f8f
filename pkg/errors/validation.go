package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// elementIDRegex matches ids usable as anchor targets: a letter followed by
// letters, digits, dots, dashes or underscores.
var elementIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// ValidateElementID validates an element identifier.
// The empty id is valid and marks the element as unaddressable.
//
// Non-empty ids must:
//   - Start with a letter
//   - Contain only letters, digits, '.', '-' or '_'
//   - Be at most 128 characters long
func ValidateElementID(id string) error {
	if id == "" {
		return nil
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "element id too long (max 128 characters)")
	}

	if !elementIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid element id: %q", id)
	}

	return nil
}

// ValidatePath validates a scene file path supplied by a user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.TrimSpace(path) != path {
		return New(ErrCodeInvalidPath, "path has leading or trailing whitespace")
	}

	return nil
}
