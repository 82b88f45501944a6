// Package auth resolves API keys to platform accounts.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no account matches the presented key.
var ErrNotFound = errors.New("api key not found")

// Account is the identity behind an API key. Admin accounts may perform
// fulfilment and catalog operations.
type Account struct {
	KeyHash string
	UserID  string
	Admin   bool
	Label   string
}

// Repository defines API key lookups.
type Repository interface {
	FindByHash(ctx context.Context, keyHash string) (*Account, error)
}
