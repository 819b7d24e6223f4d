// Package records persists registration rows as generic records, one store per table.
package records

import (
	"context"
	"errors"

	"onda/internal/application/listutil"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("record not found")

// Store persists the rows of one registration table.
type Store interface {
	FetchAll(ctx context.Context) ([]listutil.Record, error)
	Get(ctx context.Context, id string) (listutil.Record, error)
	Insert(ctx context.Context, rec listutil.Record) (listutil.Record, error)
	Update(ctx context.Context, id string, partial map[string]any) (listutil.Record, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
