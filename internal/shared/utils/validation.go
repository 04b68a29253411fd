package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxFileSize    = 1 * 1024 * 1024 // 1MB - single VFS file
	MaxPayloadSize = 64 * 1024       // 64KB - window payload
)

// String length limits
const (
	MaxIDLength    = 128
	MaxTitleLength = 256
	MaxThemeLength = 64
	MaxCommandLine = 4096
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidateTitle validates a window title override
func ValidateTitle(title string) error {
	return ValidateString(title, "title", 0, MaxTitleLength, false)
}

// ValidateContent checks file content size; any text is otherwise allowed
func ValidateContent(content string) error {
	if len(content) > MaxFileSize {
		return fmt.Errorf("content size %d bytes exceeds maximum %d bytes", len(content), MaxFileSize)
	}
	return nil
}

// ValidateOpacity checks an opacity override is within [0, 1]
func ValidateOpacity(opacity *float64) error {
	if opacity == nil {
		return nil
	}
	if *opacity < 0 || *opacity > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %v", *opacity)
	}
	return nil
}
