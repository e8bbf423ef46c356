package errors

import (
	"strings"
	"unicode"
)

// ValidateCompanyName validates a company-name query before it is sent to the
// resolution backend. Empty and whitespace-only queries are rejected locally
// so they never reach the network.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateCompanyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidQuery, "please enter a company name")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidQuery, "company name too long (max 256 characters)")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "company name contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "URL must use http or https scheme")
	}

	return nil
}
