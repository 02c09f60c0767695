package observation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced observation does not exist.
var ErrNotFound = errors.New("observation not found")

// Repository stores per-patient observation collections. List methods return
// newest-first; limit <= 0 means no limit.
type Repository interface {
	AddVitalSign(ctx context.Context, v *VitalSignRecord) error
	ListVitalSigns(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalSignRecord, error)

	AddLabResult(ctx context.Context, l *LabResult) error
	ListLabResults(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error)

	AddHealthScan(ctx context.Context, s *HealthScan) error
	ListHealthScans(ctx context.Context, patientID uuid.UUID, limit int) ([]*HealthScan, error)
}
