// Package auth holds the API key model used to guard write endpoints.
package auth

import "context"

// APIKeyInfo is a stored API key record. KeyHash is the hex-encoded
// HMAC-SHA256 of the raw key; the raw key itself is never persisted.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository looks up API keys by their computed hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
