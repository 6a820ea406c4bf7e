package account

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no account matches the requested identity or id.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicate indicates the normalized identity is already registered.
	ErrDuplicate = errors.New("account already exists")

	// ErrInvalidCredential indicates the presented secret does not match the
	// stored hash.
	ErrInvalidCredential = errors.New("invalid credentials")
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acct Account) error
	FindByID(ctx context.Context, id string) (Account, error)
	FindByIdentity(ctx context.Context, identity string) (Account, error)
	// Delete removes the account record. Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id string) error
}
