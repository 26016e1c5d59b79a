package entities

import (
	"fmt"
	"strings"
)

// SKU identifies the stock-keeping unit under analysis
type SKU string

// IsZero reports whether no SKU is selected
func (s SKU) IsZero() bool {
	return strings.TrimSpace(string(s)) == ""
}

// String returns the raw identifier
func (s SKU) String() string {
	return string(s)
}

// ParseSKU trims and validates a user supplied identifier
func ParseSKU(raw string) (SKU, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("sku cannot be empty")
	}
	if strings.ContainsAny(trimmed, "/?#") {
		return "", fmt.Errorf("sku %q contains reserved characters", trimmed)
	}
	return SKU(trimmed), nil
}
