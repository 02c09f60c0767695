package provider

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when no provider matches the id.
var ErrNotFound = errors.New("provider not found")

type Repository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
	// ListActive returns every active provider. Directory filters are
	// applied in the service, matching the in-memory query semantics.
	ListActive(ctx context.Context) ([]*Provider, error)
}
