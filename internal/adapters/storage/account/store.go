package account

import (
	"context"
	"errors"

	domain "onda/internal/domain/account"
)

// ErrNotFound is returned when no usuario matches.
var ErrNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when another usuario already uses the email.
var ErrDuplicateEmail = errors.New("email already registered")

// Store persists Account state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
	CountByPermission(ctx context.Context, permission string) (int, error)
}
