// Package shared provides small helpers used across the rewin packages.
package shared

import (
	"bytes"
	"fmt"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StripBOM drops a leading UTF-8 byte order mark. PowerShell's
// Out-File writes one by default.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// StripBOMString is StripBOM for a single decoded line.
func StripBOMString(value string) string {
	return strings.TrimPrefix(value, "\uFEFF")
}

// NormalizeKey lowercases and trims a name or package identifier for
// case-insensitive matching.
func NormalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// PSQuote renders a PowerShell single-quoted string literal.
func PSQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
