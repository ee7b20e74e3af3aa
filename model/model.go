package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New() // Generate a new UUID.
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr) // Append the module as a prefix to the UUID.
	return idWithSuffix
}

// LastTenDigits returns the trailing ten digits of a phone or fax number,
// ignoring punctuation, whitespace and any country prefix. Numbers with
// fewer than ten digits are returned as-is after stripping non-digits.
func LastTenDigits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// SameFaxLine reports whether two numbers refer to the same ten-digit fax
// line. Either side resolving to fewer than ten digits is never a match.
func SameFaxLine(a, b string) bool {
	da, db := LastTenDigits(a), LastTenDigits(b)
	if len(da) != 10 || len(db) != 10 {
		return false
	}
	return da == db
}
