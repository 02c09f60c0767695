package consultation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("consultation not found")

// Repository stores consultation sessions and their reviews.
type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Session, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Session, error)

	// IsBooked reports whether the provider has a non-cancelled session
	// scheduled at exactly this start time.
	IsBooked(ctx context.Context, providerID uuid.UUID, start time.Time) (bool, error)

	AddReview(ctx context.Context, r *Review) error
	ListReviews(ctx context.Context, providerID uuid.UUID) ([]*Review, error)
}
