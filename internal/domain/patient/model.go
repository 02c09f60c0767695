package patient

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Patient is the full patient aggregate: demographics, medical history and
// the active medication list. Observations (vitals, labs, scans) live in
// their own collections keyed by patient id.
type Patient struct {
	ID                 uuid.UUID      `db:"id" json:"id"`
	PersonalInfo       PersonalInfo   `db:"personal_info" json:"personalInfo"`
	MedicalHistory     MedicalHistory `db:"medical_history" json:"medicalHistory"`
	CurrentMedications []Medication   `db:"current_medications" json:"currentMedications"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

type PersonalInfo struct {
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	DateOfBirth      time.Time        `json:"dateOfBirth"`
	Gender           string           `json:"gender"`
	BloodType        string           `json:"bloodType"`
	Height           float64          `json:"height"`
	Weight           float64          `json:"weight"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email"`
	Address          Address          `json:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type MedicalHistory struct {
	Conditions    []MedicalCondition `json:"conditions"`
	Surgeries     []Surgery          `json:"surgeries"`
	Allergies     []Allergy          `json:"allergies"`
	FamilyHistory []FamilyHistory    `json:"familyHistory"`
	Immunizations []Immunization     `json:"immunizations"`
}

type MedicalCondition struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	ICD10Code          string    `json:"icd10Code"`
	DiagnosisDate      time.Time `json:"diagnosisDate"`
	Status             string    `json:"status"`
	Severity           string    `json:"severity"`
	Notes              string    `json:"notes,omitempty"`
	TreatingPhysician  string    `json:"treatingPhysician,omitempty"`
}

type Surgery struct {
	ID            uuid.UUID `json:"id"`
	Procedure     string    `json:"procedure"`
	Date          time.Time `json:"date"`
	Surgeon       string    `json:"surgeon"`
	Hospital      string    `json:"hospital"`
	Complications string    `json:"complications,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type Allergy struct {
	ID        uuid.UUID  `json:"id"`
	Allergen  string     `json:"allergen"`
	Type      string     `json:"type"`
	Severity  string     `json:"severity"`
	Reaction  string     `json:"reaction"`
	OnsetDate *time.Time `json:"onsetDate,omitempty"`
}

type FamilyHistory struct {
	ID           uuid.UUID `json:"id"`
	Relationship string    `json:"relationship"`
	Condition    string    `json:"condition"`
	AgeOfOnset   *int      `json:"ageOfOnset,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

type Immunization struct {
	ID        uuid.UUID  `json:"id"`
	Vaccine   string     `json:"vaccine"`
	Date      time.Time  `json:"date"`
	Provider  string     `json:"provider"`
	LotNumber string     `json:"lotNumber,omitempty"`
	NextDue   *time.Time `json:"nextDue,omitempty"`
}

// Medication is an entry in the patient's active medication list with pill
// inventory tracking. RemainingPills never exceeds TotalPills and never
// drops below zero.
type Medication struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Dosage         string     `json:"dosage"`
	Frequency      string     `json:"frequency"`
	Times          []string   `json:"times"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	TotalPills     int        `json:"totalPills"`
	RemainingPills int        `json:"remainingPills"`
	Instructions   string     `json:"instructions,omitempty"`
	SideEffects    []string   `json:"sideEffects,omitempty"`
	Status         string     `json:"status"`
	LastTaken      *time.Time `json:"lastTaken,omitempty"`
	MissedDoses    int        `json:"missedDoses"`
}

// Clone returns a deep copy with every nested slice detached, so callers
// can mutate the result without writing through to the source record.
func (p *Patient) Clone() *Patient {
	cp := *p
	cp.MedicalHistory = p.MedicalHistory.clone()
	if p.CurrentMedications != nil {
		cp.CurrentMedications = make([]Medication, len(p.CurrentMedications))
		for i, m := range p.CurrentMedications {
			cp.CurrentMedications[i] = m.clone()
		}
	}
	return &cp
}

func (h MedicalHistory) clone() MedicalHistory {
	return MedicalHistory{
		Conditions:    slices.Clone(h.Conditions),
		Surgeries:     slices.Clone(h.Surgeries),
		Allergies:     slices.Clone(h.Allergies),
		FamilyHistory: slices.Clone(h.FamilyHistory),
		Immunizations: slices.Clone(h.Immunizations),
	}
}

func (m Medication) clone() Medication {
	m.Times = slices.Clone(m.Times)
	m.SideEffects = slices.Clone(m.SideEffects)
	return m
}

// Age returns the patient's age in whole years as of now.
func (p *Patient) Age() int {
	return AgeAt(p.PersonalInfo.DateOfBirth, time.Now())
}

// AgeAt returns whole years between dob and the reference time.
func AgeAt(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.YearDay() < dob.YearDay() {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}

// BMI computes body mass index from the recorded height (cm) and weight (kg).
// Returns 0 when height is unset.
func (p *Patient) BMI() float64 {
	h := p.PersonalInfo.Height / 100
	if h <= 0 {
		return 0
	}
	return p.PersonalInfo.Weight / (h * h)
}
