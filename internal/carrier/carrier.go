// Package carrier talks to the upstream fax providers. Each carrier
// gets its own client; both satisfy Downloader so the pipeline does not
// care which line a document arrived on.
package carrier

import (
	"context"
	"fmt"
	"strings"
)

// Carrier identifiers stored on each inbound fax.
const (
	IFax      = "ifax"
	HumbleFax = "humblefax"
)

// Downloader fetches the PDF for a received fax from the carrier that
// holds it.
type Downloader interface {
	// Download returns the raw PDF bytes for the given carrier-side
	// identifiers. Errors are classified; see IsTransient.
	Download(ctx context.Context, jobID, transactionID string) ([]byte, error)
}

// APIError is a carrier API failure carrying enough context to decide
// whether a retry can help.
type APIError struct {
	Carrier    string
	Operation  string
	StatusCode int
	Message    string
	Transient  bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed (HTTP %d): %s", e.Carrier, e.Operation, e.StatusCode, e.Message)
}

// IsTransient reports whether the error is worth retrying. Network
// failures and carrier 5xx responses are transient; 4xx responses mean
// the request itself is bad and will never succeed.
func IsTransient(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Transient
	}
	// Anything unclassified (network errors, timeouts) may recover.
	return true
}

// ValidateFaxNumber reports whether a fax number has a plausible digit
// count after stripping formatting. Carriers accept 10 to 15 digits.
func ValidateFaxNumber(fax string) bool {
	digits := digitsOnly(fax)
	return len(digits) >= 10 && len(digits) <= 15
}

// FormatE164 normalizes a fax number to E.164. Ten-digit numbers are
// assumed to be US and get a +1 prefix.
func FormatE164(fax string) string {
	digits := digitsOnly(fax)
	if len(digits) == 10 {
		return "+1" + digits
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return "+" + digits
	}
	return "+" + digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
