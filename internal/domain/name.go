package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxNameLength = 100

var (
	ErrNameEmpty   = errors.New("name cannot be empty")
	ErrNameTooLong = errors.New("name must be 100 characters or less")
)

// Name is the persisted display name. Timestamp is nil until the first update.
type Name struct {
	Name      string     `json:"name"`
	Timestamp *time.Time `json:"timestamp"`
}

// NormalizeName trims s and checks the length limits.
func NormalizeName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrNameEmpty
	}
	if utf8.RuneCountInString(s) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return s, nil
}
