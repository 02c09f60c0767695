package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses form a closed lifecycle. Transitions outside the
// table below are rejected.
const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

var validTypes = map[string]bool{
	"consultation": true, "follow-up": true, "procedure": true,
	"emergency": true, "telemedicine": true,
}

var transitions = map[string][]string{
	StatusScheduled:  {StatusConfirmed, StatusInProgress, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// Appointment links a patient and a provider at a scheduled time.
type Appointment struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patientId"`
	ProviderID       uuid.UUID  `db:"provider_id" json:"providerId"`
	Type             string     `db:"type" json:"type"`
	Status           string     `db:"status" json:"status"`
	ScheduledDate    time.Time  `db:"scheduled_date" json:"scheduledDate"`
	Duration         int        `db:"duration" json:"duration"`
	Location         string     `db:"location" json:"location,omitempty"`
	ChiefComplaint   string     `db:"chief_complaint" json:"chiefComplaint,omitempty"`
	Notes            string     `db:"notes" json:"notes,omitempty"`
	Diagnosis        string     `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment        string     `db:"treatment" json:"treatment,omitempty"`
	FollowUpRequired bool       `db:"follow_up_required" json:"followUpRequired"`
	FollowUpDate     *time.Time `db:"follow_up_date" json:"followUpDate,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// Clone returns a copy detached from the source record.
func (a *Appointment) Clone() *Appointment {
	cp := *a
	if a.FollowUpDate != nil {
		d := *a.FollowUpDate
		cp.FollowUpDate = &d
	}
	return &cp
}

// Transition moves the appointment to a new status or fails with the reason.
func (a *Appointment) Transition(to string) error {
	if !ValidStatus(to) {
		return fmt.Errorf("invalid appointment status: %s", to)
	}
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("cannot transition appointment from %s to %s", a.Status, to)
	}
	a.Status = to
	return nil
}
