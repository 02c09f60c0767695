package consultation

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "scheduled"
	StatusWaiting   = "waiting"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	TypeVideo     = "video"
	TypeAudio     = "audio"
	TypeChat      = "chat"
	TypeEmergency = "emergency"
)

var validTypes = map[string]bool{
	TypeVideo: true, TypeAudio: true, TypeChat: true, TypeEmergency: true,
}

// transitions lists the legal next statuses per current status. Completed
// and cancelled are terminal.
var transitions = map[string][]string{
	StatusScheduled: {StatusWaiting, StatusActive, StatusCancelled},
	StatusWaiting:   {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func ValidType(t string) bool { return validTypes[t] }

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is one telemedicine consultation between a patient and a
// provider. Duration and fee are copied from the provider at scheduling
// time so later fee changes don't affect existing bookings.
type Session struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patientId"`
	ProviderID      uuid.UUID  `json:"providerId"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	ScheduledTime   time.Time  `json:"scheduledTime"`
	ActualStartTime *time.Time `json:"actualStartTime,omitempty"`
	ActualEndTime   *time.Time `json:"actualEndTime,omitempty"`
	Duration        int        `json:"duration"`
	Fee             float64    `json:"fee"`
	PaymentStatus   string     `json:"paymentStatus"`
	Intake          Intake     `json:"intake"`
	Diagnosis       *Diagnosis `json:"diagnosis,omitempty"`
	Treatment       *Treatment `json:"treatment,omitempty"`
	Notes           Notes      `json:"notes"`
	EmergencyCode   string     `json:"emergencyCode,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy with nested slices and pointers detached, so
// callers can mutate the result without writing through to the source.
func (s *Session) Clone() *Session {
	cp := *s
	if s.ActualStartTime != nil {
		t := *s.ActualStartTime
		cp.ActualStartTime = &t
	}
	if s.ActualEndTime != nil {
		t := *s.ActualEndTime
		cp.ActualEndTime = &t
	}
	cp.Intake = s.Intake.clone()
	cp.Diagnosis = s.Diagnosis.clone()
	cp.Treatment = s.Treatment.clone()
	return &cp
}

func (i Intake) clone() Intake {
	i.Symptoms = slices.Clone(i.Symptoms)
	i.CurrentMedications = slices.Clone(i.CurrentMedications)
	i.Allergies = slices.Clone(i.Allergies)
	i.MedicalHistory = slices.Clone(i.MedicalHistory)
	return i
}

func (d *Diagnosis) clone() *Diagnosis {
	if d == nil {
		return nil
	}
	cp := *d
	cp.SecondaryDiagnoses = slices.Clone(d.SecondaryDiagnoses)
	cp.ICDCodes = slices.Clone(d.ICDCodes)
	return &cp
}

func (t *Treatment) clone() *Treatment {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Prescriptions = slices.Clone(t.Prescriptions)
	cp.Recommendations = slices.Clone(t.Recommendations)
	cp.Referrals = slices.Clone(t.Referrals)
	if t.FollowUpDate != nil {
		d := *t.FollowUpDate
		cp.FollowUpDate = &d
	}
	return &cp
}

// Transition moves the session to a new status if the lifecycle allows it.
func (s *Session) Transition(to string) bool {
	if !CanTransition(s.Status, to) {
		return false
	}
	s.Status = to
	return true
}

// Intake is the pre-consultation questionnaire.
type Intake struct {
	ChiefComplaint     string   `json:"chiefComplaint"`
	Symptoms           []string `json:"symptoms,omitempty"`
	CurrentMedications []string `json:"currentMedications,omitempty"`
	Allergies          []string `json:"allergies,omitempty"`
	MedicalHistory     []string `json:"medicalHistory,omitempty"`
}

type Diagnosis struct {
	PrimaryDiagnosis   string   `json:"primaryDiagnosis"`
	SecondaryDiagnoses []string `json:"secondaryDiagnoses,omitempty"`
	ICDCodes           []string `json:"icdCodes,omitempty"`
	Confidence         float64  `json:"confidence"`
}

type Treatment struct {
	Prescriptions    []Prescription `json:"prescriptions,omitempty"`
	Recommendations  []string       `json:"recommendations,omitempty"`
	FollowUpRequired bool           `json:"followUpRequired"`
	FollowUpDate     *time.Time     `json:"followUpDate,omitempty"`
	Referrals        []string       `json:"referrals,omitempty"`
}

type Prescription struct {
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

type Notes struct {
	DoctorNotes  string `json:"doctorNotes,omitempty"`
	PatientNotes string `json:"patientNotes,omitempty"`
	PrivateNotes string `json:"privateNotes,omitempty"`
}

// Review is a patient rating left after a completed consultation.
type Review struct {
	ID         uuid.UUID        `json:"id"`
	SessionID  uuid.UUID        `json:"sessionId"`
	PatientID  uuid.UUID        `json:"patientId"`
	ProviderID uuid.UUID        `json:"providerId"`
	Rating     int              `json:"rating"`
	Comment    string           `json:"comment,omitempty"`
	Categories ReviewCategories `json:"categories"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type ReviewCategories struct {
	Communication   int `json:"communication"`
	Professionalism int `json:"professionalism"`
	Thoroughness    int `json:"thoroughness"`
	Punctuality     int `json:"punctuality"`
}

// StartResult carries the credentials a client needs to join a live
// session.
type StartResult struct {
	Session      *Session `json:"session"`
	SessionToken string   `json:"sessionToken"`
	RoomID       string   `json:"roomId"`
	AccessToken  string   `json:"accessToken"`
}

// EmergencyRequest asks for the next available emergency provider. When
// Severity is unset the emergency type is used as the severity bucket, so
// a bare emergencyType of "critical" gets the critical wait estimate.
type EmergencyRequest struct {
	PatientID     uuid.UUID `json:"patientId"`
	EmergencyType string    `json:"emergencyType"`
	Severity      string    `json:"severity,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// EmergencyResponse pairs the scheduled session with triage metadata.
type EmergencyResponse struct {
	Session              *Session `json:"session"`
	EstimatedWaitMinutes int      `json:"estimatedWaitMinutes"`
	EmergencyCode        string   `json:"emergencyCode"`
}
