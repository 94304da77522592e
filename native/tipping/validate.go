package tipping

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// IsSafeText rejects characters that would need escaping in downstream HTML.
func IsSafeText(text string) bool {
	return !strings.ContainsAny(text, "<>&")
}

// ValidateUsername enforces 1-32 bytes of [a-z0-9_].
func ValidateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	for i := 0; i < len(username); i++ {
		c := username[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return ErrInvalidUsername
	}
	return nil
}

// NormalizeText trims surrounding whitespace and applies NFC so visually
// identical strings have one byte representation.
func NormalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// validateText checks a length bound and, when safe is set, the forbidden characters.
func validateText(text string, max int, tooLong *Error, safe bool) error {
	if len(text) > max {
		return tooLong
	}
	if safe && !IsSafeText(text) {
		return ErrUnsafeTextContent
	}
	return nil
}

// ValidateMessage checks an optional tip message.
func ValidateMessage(message string) error {
	return validateText(message, MaxMessageLength, ErrMessageTooLong, true)
}

// ValidateTipBounds checks amount against the global tip range.
func ValidateTipBounds(amount uint64) error {
	if amount < MinTipAmount {
		return ErrTipAmountTooSmall
	}
	if amount > MaxTipAmount {
		return ErrTipAmountTooLarge
	}
	return nil
}
