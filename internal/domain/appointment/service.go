package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProviderDirectory answers whether a provider exists and accepts patients.
type ProviderDirectory interface {
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProviderDirectoryFunc adapts a function to the ProviderDirectory interface.
type ProviderDirectoryFunc func(ctx context.Context, id uuid.UUID) (bool, error)

func (f ProviderDirectoryFunc) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	return f(ctx, id)
}

type Service struct {
	appointments Repository
	providers    ProviderDirectory
}

func NewService(appointments Repository, providers ProviderDirectory) *Service {
	return &Service{appointments: appointments, providers: providers}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if a.ProviderID == uuid.Nil {
		return fmt.Errorf("providerId is required")
	}
	if a.ScheduledDate.IsZero() {
		return fmt.Errorf("scheduledDate is required")
	}
	if a.Type == "" {
		a.Type = "consultation"
	}
	if !validTypes[a.Type] {
		return fmt.Errorf("invalid appointment type: %s", a.Type)
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.Status != StatusScheduled {
		return fmt.Errorf("new appointments must start in %s status", StatusScheduled)
	}
	if a.Duration <= 0 {
		a.Duration = 30
	}

	if s.providers != nil {
		active, err := s.providers.IsActive(ctx, a.ProviderID)
		if err != nil {
			return fmt.Errorf("provider not found")
		}
		if !active {
			return fmt.Errorf("provider is not accepting appointments")
		}
	}

	a.ID = uuid.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// UpdateStatus moves an appointment through its lifecycle, enforcing the
// transition table.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Transition(status); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now().UTC()
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateOutcome records the clinical wrap-up fields on an appointment.
func (s *Service) UpdateOutcome(ctx context.Context, id uuid.UUID, diagnosis, treatment, notes string, followUpRequired bool, followUpDate *time.Time) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if diagnosis != "" {
		a.Diagnosis = diagnosis
	}
	if treatment != "" {
		a.Treatment = treatment
	}
	if notes != "" {
		a.Notes = notes
	}
	a.FollowUpRequired = followUpRequired
	a.FollowUpDate = followUpDate
	a.UpdatedAt = time.Now().UTC()
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByProvider(ctx, providerID, limit, offset)
}
