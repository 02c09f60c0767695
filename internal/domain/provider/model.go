package provider

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider is a practicing clinician in the directory. Consultation terms
// (fee, duration, emergency availability) live on the same record.
type Provider struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	PersonalInfo PersonalInfo     `db:"personal_info" json:"personalInfo"`
	Credentials  Credentials      `db:"credentials" json:"credentials"`
	Availability Availability     `db:"availability" json:"availability"`
	Consultation ConsultationInfo `db:"consultation" json:"consultation"`
	Ratings      Ratings          `db:"ratings" json:"ratings"`
	IsActive     *bool            `db:"is_active" json:"isActive,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updatedAt"`
}

type PersonalInfo struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Title         string `json:"title"`
	Specialty     string `json:"specialty"`
	SubSpecialty  string `json:"subSpecialty,omitempty"`
	LicenseNumber string `json:"licenseNumber"`
	NPINumber     string `json:"npiNumber"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

type Credentials struct {
	MedicalSchool       string   `json:"medicalSchool"`
	Residency           string   `json:"residency"`
	Fellowship          string   `json:"fellowship,omitempty"`
	BoardCertifications []string `json:"boardCertifications"`
	YearsOfExperience   int      `json:"yearsOfExperience"`
}

type Availability struct {
	Schedule          WeeklySchedule `json:"schedule"`
	TimeZone          string         `json:"timeZone"`
	ConsultationTypes []string       `json:"consultationTypes"`
}

type WeeklySchedule struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// Day returns the schedule for a weekday.
func (w WeeklySchedule) Day(d time.Weekday) DaySchedule {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

type DaySchedule struct {
	IsAvailable bool       `json:"isAvailable"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Breaks      []TimeSlot `json:"breaks,omitempty"`
}

type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type ConsultationInfo struct {
	Fee                float64 `json:"fee"`
	Duration           int     `json:"duration"`
	EmergencyAvailable bool    `json:"emergencyAvailable"`
}

type Ratings struct {
	AverageRating       float64 `json:"averageRating"`
	TotalReviews        int     `json:"totalReviews"`
	PatientSatisfaction float64 `json:"patientSatisfaction"`
}

// Clone returns a deep copy with every nested slice detached, so callers
// can mutate the result without writing through to the source record.
func (p *Provider) Clone() *Provider {
	cp := *p
	cp.Credentials.BoardCertifications = slices.Clone(p.Credentials.BoardCertifications)
	cp.Availability.ConsultationTypes = slices.Clone(p.Availability.ConsultationTypes)
	cp.Availability.Schedule = p.Availability.Schedule.clone()
	if p.IsActive != nil {
		active := *p.IsActive
		cp.IsActive = &active
	}
	return &cp
}

func (w WeeklySchedule) clone() WeeklySchedule {
	w.Monday = w.Monday.clone()
	w.Tuesday = w.Tuesday.clone()
	w.Wednesday = w.Wednesday.clone()
	w.Thursday = w.Thursday.clone()
	w.Friday = w.Friday.clone()
	w.Saturday = w.Saturday.clone()
	w.Sunday = w.Sunday.clone()
	return w
}

func (d DaySchedule) clone() DaySchedule {
	d.Breaks = slices.Clone(d.Breaks)
	return d
}

// Active reports whether the provider accepts patients. Nil counts as
// active so partially-populated records default to visible.
func (p *Provider) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// MatchesSpecialty does a case-insensitive substring match against the
// specialty and sub-specialty.
func (p *Provider) MatchesSpecialty(specialty string) bool {
	if specialty == "" {
		return true
	}
	q := strings.ToLower(specialty)
	return strings.Contains(strings.ToLower(p.PersonalInfo.Specialty), q) ||
		strings.Contains(strings.ToLower(p.PersonalInfo.SubSpecialty), q)
}

// OffersConsultationType reports whether the provider supports the given
// consultation channel (e.g. "video", "telemedicine").
func (p *Provider) OffersConsultationType(t string) bool {
	for _, ct := range p.Availability.ConsultationTypes {
		if strings.EqualFold(ct, t) {
			return true
		}
	}
	return false
}

// AvailabilitySlot is one bookable window on a provider's calendar.
type AvailabilitySlot struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Available bool      `json:"available"`
}
