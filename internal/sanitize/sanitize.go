// Package sanitize validates inbound message text before it reaches the dialog.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxInputSize caps one inbound message in bytes.
	// Telegram itself limits texts to 4096 characters.
	DefaultMaxInputSize = 16 * 1024

	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "PIZZABOT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input enforces the size limit, rejects invalid UTF-8 and strips control
// characters other than newline, tab and carriage return.
// Oversized input is rejected, not truncated.
func Input(s string) (string, error) {
	limit := MaxInputSize()
	if len(s) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(s), limit)
	}
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(s, isUnsafeControl) < 0 {
		return s, nil
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, s), nil
}

// IsInvalid reports whether err was produced by Input.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8)
}

// MaxInputSize returns the active limit.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
