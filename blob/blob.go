package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document exists for the given id.
var ErrNotFound = errors.New("blob not found")

// Store holds rendered report documents keyed by report id.
type Store interface {
	Upload(ctx context.Context, id string, html string) (string, error)
	Get(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}
