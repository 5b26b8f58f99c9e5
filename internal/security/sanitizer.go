package security

import (
	"net/url"
	"strings"

	"github.com/foxhole-tools/shiptracker/pkg/errors"
	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const (
	MaxNameLength = 64
	MaxTextLength = 1000
)

// SanitizeText strips markup and control bytes from free-form modal input.
func SanitizeText(input string) string {
	input = htmlPolicy.Sanitize(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// ClampText sanitizes and enforces a max length. Blank input comes back as
// "" (used for clear semantics); overlong input is a validation error.
func ClampText(input string, maxLen int) (string, error) {
	s := SanitizeText(input)
	if len(s) > maxLen {
		return "", errors.New(errors.ErrCodeValidation, "text too long")
	}
	return s, nil
}

// ValidateShipName trims and checks the 1-64 char bound.
func ValidateShipName(name string) (string, error) {
	name = SanitizeText(name)
	if len(name) < 1 || len(name) > MaxNameLength {
		return "", errors.New(errors.ErrCodeValidation, "name must be 1-64 characters")
	}
	return name, nil
}

// ValidateURL accepts http/https URLs with a host; blank input means clear.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", errors.New(errors.ErrCodeValidation, "invalid URL")
	}
	return raw, nil
}
