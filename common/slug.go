package common

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyKey = errors.New("key cannot be empty")
	nonKeyChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Keyify normalizes a human label into a lookup key: lowercase, with runs of
// anything that is not a letter or digit collapsed into a single underscore.
// "Investigative Hawk" becomes "investigative_hawk".
func Keyify(input, fallback string) (string, error) {
	key := keyify(input)
	if key == "" {
		key = keyify(fallback)
	}
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

func keyify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	key := nonKeyChars.ReplaceAllString(lower, "_")
	return strings.Trim(key, "_")
}
