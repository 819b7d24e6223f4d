package agenda

import (
	"context"
	"errors"

	domain "onda/internal/domain/agenda"
)

// ErrNotFound is returned when no event has the requested id.
var ErrNotFound = errors.New("event not found")

// Store persists agenda events.
type Store interface {
	Save(ctx context.Context, e domain.Event) error
	GetByID(ctx context.Context, id string) (domain.Event, error)
	List(ctx context.Context, month string) ([]domain.Event, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
