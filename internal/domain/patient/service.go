package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

var validMedicationStatuses = map[string]bool{
	"active": true, "paused": true, "completed": true, "discontinued": true,
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.PersonalInfo.FirstName == "" {
		return fmt.Errorf("firstName is required")
	}
	if p.PersonalInfo.LastName == "" {
		return fmt.Errorf("lastName is required")
	}
	if p.PersonalInfo.DateOfBirth.IsZero() {
		return fmt.Errorf("dateOfBirth is required")
	}
	if p.PersonalInfo.Gender != "" && !validGenders[p.PersonalInfo.Gender] {
		return fmt.Errorf("invalid gender: %s", p.PersonalInfo.Gender)
	}

	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	for i := range p.CurrentMedications {
		if err := normalizeMedication(&p.CurrentMedications[i]); err != nil {
			return err
		}
	}
	assignHistoryIDs(&p.MedicalHistory)

	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// UpdateInput is a partial patient patch. Only the sections that are set
// replace the stored ones; everything else is left untouched.
type UpdateInput struct {
	PersonalInfo       *PersonalInfo   `json:"personalInfo,omitempty"`
	MedicalHistory     *MedicalHistory `json:"medicalHistory,omitempty"`
	CurrentMedications *[]Medication   `json:"currentMedications,omitempty"`
}

// Update applies a shallow section-level merge. The stored CreatedAt is
// preserved and UpdatedAt always advances, so an empty patch changes nothing
// but the timestamp.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.PersonalInfo != nil {
		if in.PersonalInfo.Gender != "" && !validGenders[in.PersonalInfo.Gender] {
			return nil, fmt.Errorf("invalid gender: %s", in.PersonalInfo.Gender)
		}
		p.PersonalInfo = *in.PersonalInfo
	}
	if in.MedicalHistory != nil {
		p.MedicalHistory = *in.MedicalHistory
		assignHistoryIDs(&p.MedicalHistory)
	}
	if in.CurrentMedications != nil {
		meds := *in.CurrentMedications
		for i := range meds {
			if err := normalizeMedication(&meds[i]); err != nil {
				return nil, err
			}
		}
		p.CurrentMedications = meds
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddMedication appends a medication to the patient's active list.
func (s *Service) AddMedication(ctx context.Context, patientID uuid.UUID, med Medication) (*Patient, error) {
	if err := normalizeMedication(&med); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	p.CurrentMedications = append(p.CurrentMedications, med)
	p.UpdatedAt = time.Now().UTC()
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// TakeDose decrements the remaining pill count, never below zero, and stamps
// the last-taken time.
func (s *Service) TakeDose(ctx context.Context, patientID, medicationID uuid.UUID) (*Medication, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	med := findMedication(p, medicationID)
	if med == nil {
		return nil, fmt.Errorf("medication not found")
	}

	if med.RemainingPills > 0 {
		med.RemainingPills--
	}
	now := time.Now().UTC()
	med.LastTaken = &now

	p.UpdatedAt = now
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return med, nil
}

// RecordMissedDose increments the missed-dose counter for a medication.
func (s *Service) RecordMissedDose(ctx context.Context, patientID, medicationID uuid.UUID) (*Medication, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	med := findMedication(p, medicationID)
	if med == nil {
		return nil, fmt.Errorf("medication not found")
	}

	med.MissedDoses++
	p.UpdatedAt = time.Now().UTC()
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return med, nil
}

// Restock adds pills to a medication. The remaining count may never exceed
// the bottle total.
func (s *Service) Restock(ctx context.Context, patientID, medicationID uuid.UUID, count int) (*Medication, error) {
	if count <= 0 {
		return nil, fmt.Errorf("restock count must be positive")
	}
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	med := findMedication(p, medicationID)
	if med == nil {
		return nil, fmt.Errorf("medication not found")
	}
	if med.RemainingPills+count > med.TotalPills {
		return nil, fmt.Errorf("restock of %d would exceed total of %d pills", count, med.TotalPills)
	}

	med.RemainingPills += count
	p.UpdatedAt = time.Now().UTC()
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return med, nil
}

func findMedication(p *Patient, medicationID uuid.UUID) *Medication {
	for i := range p.CurrentMedications {
		if p.CurrentMedications[i].ID == medicationID {
			return &p.CurrentMedications[i]
		}
	}
	return nil
}

func normalizeMedication(m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("medication name is required")
	}
	if m.TotalPills < 0 {
		return fmt.Errorf("totalPills must not be negative")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = "active"
	}
	if !validMedicationStatuses[m.Status] {
		return fmt.Errorf("invalid medication status: %s", m.Status)
	}
	if m.RemainingPills > m.TotalPills {
		m.RemainingPills = m.TotalPills
	}
	if m.RemainingPills < 0 {
		m.RemainingPills = 0
	}
	return nil
}

func assignHistoryIDs(h *MedicalHistory) {
	for i := range h.Conditions {
		if h.Conditions[i].ID == uuid.Nil {
			h.Conditions[i].ID = uuid.New()
		}
	}
	for i := range h.Surgeries {
		if h.Surgeries[i].ID == uuid.Nil {
			h.Surgeries[i].ID = uuid.New()
		}
	}
	for i := range h.Allergies {
		if h.Allergies[i].ID == uuid.Nil {
			h.Allergies[i].ID = uuid.New()
		}
	}
	for i := range h.FamilyHistory {
		if h.FamilyHistory[i].ID == uuid.Nil {
			h.FamilyHistory[i].ID = uuid.New()
		}
	}
	for i := range h.Immunizations {
		if h.Immunizations[i].ID == uuid.Nil {
			h.Immunizations[i].ID = uuid.New()
		}
	}
}
