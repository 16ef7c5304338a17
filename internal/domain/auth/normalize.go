package auth

import "strings"

// NormalizeEmail is the canonical form accounts are stored and looked up by
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
