package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the on-chain limit for display names.
const MaxNameLength = 32

type Identity struct {
	Address     string    `json:"address"` // lowercase hex, primary key
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeName trims the name and validates it against the on-chain limits.
// Leading/trailing whitespace is never persisted. The limit counts
// characters, not bytes, so multibyte names get the full 32.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("name must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", fmt.Errorf("name must be %d characters or less", MaxNameLength)
	}
	return trimmed, nil
}

// NormalizeAddress lowercases a hex address so it can be used as a store key.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
