package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrFileTooLarge is returned by ValidateFileSize for files over the limit.
var ErrFileTooLarge = errors.New("file too large")

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// File validation
func ValidateFileSize(size, maxSize int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds maximum allowed size of %d bytes", ErrFileTooLarge, size, maxSize)
	}
	return nil
}

func ValidateFileName(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if len(filename) > 255 {
		return fmt.Errorf("filename too long (max 255 characters)")
	}

	if !utf8.ValidString(filename) {
		return fmt.Errorf("filename contains invalid UTF-8 characters")
	}

	invalidChars := []string{"<", ">", ":", "\"", "|", "?", "*", "\x00", "/", "\\"}
	for _, char := range invalidChars {
		if strings.Contains(filename, char) {
			return fmt.Errorf("filename contains invalid character: %s", char)
		}
	}

	// Reserved device names (Windows)
	reservedNames := []string{"CON", "PRN", "AUX", "NUL", "COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9", "LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9"}
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))
	for _, reserved := range reservedNames {
		if strings.EqualFold(nameWithoutExt, reserved) {
			return fmt.Errorf("filename uses reserved name: %s", reserved)
		}
	}
	return nil
}

// Email validation
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}

	return nil
}

// NormalizeEmails lower-cases, trims and de-duplicates the list, validating
// each address.
func NormalizeEmails(emails []string) ([]string, error) {
	seen := make(map[string]bool, len(emails))
	result := make([]string, 0, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		if seen[email] {
			continue
		}
		seen[email] = true
		result = append(result, email)
	}
	return result, nil
}

// ParseLimit reads a positive integer query value, falling back to def when
// missing or invalid.
func ParseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

// SplitList splits a comma separated query value, dropping empty parts.
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
