// Package seed loads a small set of demo records so a fresh development
// server has data to work with.
package seed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitalink/vitalink/internal/domain/observation"
	"github.com/vitalink/vitalink/internal/domain/patient"
	"github.com/vitalink/vitalink/internal/domain/provider"
)

type Services struct {
	Patients     *patient.Service
	Providers    *provider.Service
	Observations *observation.Service
}

// Run inserts the demo providers and patient. It is a no-op when the
// provider directory already has entries, so restarting a seeded server
// does not duplicate data.
func Run(ctx context.Context, svcs Services, log zerolog.Logger) error {
	_, total, err := svcs.Providers.List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if total > 0 {
		log.Info().Int("providers", total).Msg("seed skipped, data already present")
		return nil
	}

	for _, p := range demoProviders() {
		if err := svcs.Providers.Create(ctx, p); err != nil {
			return err
		}
	}

	demo := demoPatient()
	if err := svcs.Patients.Create(ctx, demo); err != nil {
		return err
	}

	vitals := &observation.VitalSignRecord{
		PatientID:        demo.ID,
		Timestamp:        time.Now().UTC().Add(-24 * time.Hour),
		HeartRate:        72,
		BloodPressure:    observation.BloodPressure{Systolic: 122, Diastolic: 78},
		Temperature:      36.7,
		RespiratoryRate:  14,
		OxygenSaturation: 98,
		RecordedBy:       "self",
		Location:         "home",
	}
	if err := svcs.Observations.AddVitalSigns(ctx, vitals); err != nil {
		return err
	}

	log.Info().
		Str("patient_id", demo.ID.String()).
		Msg("seeded demo providers and patient")
	return nil
}

func weekdays(start, end string, breaks ...provider.TimeSlot) provider.DaySchedule {
	return provider.DaySchedule{IsAvailable: true, StartTime: start, EndTime: end, Breaks: breaks}
}

func demoProviders() []*provider.Provider {
	lunch := provider.TimeSlot{StartTime: "12:00", EndTime: "13:00"}
	workday := weekdays("08:00", "17:00", lunch)

	return []*provider.Provider{
		{
			PersonalInfo: provider.PersonalInfo{
				FirstName:     "Sarah",
				LastName:      "Mitchell",
				Title:         "MD",
				Specialty:     "Internal Medicine",
				LicenseNumber: "MD123456",
				NPINumber:     "1234567890",
				Email:         "s.mitchell@vitalink.example",
			},
			Credentials: provider.Credentials{
				MedicalSchool:       "Johns Hopkins School of Medicine",
				Residency:           "Massachusetts General Hospital",
				BoardCertifications: []string{"Internal Medicine"},
				YearsOfExperience:   12,
			},
			Availability: provider.Availability{
				Schedule: provider.WeeklySchedule{
					Monday: workday, Tuesday: workday, Wednesday: workday,
					Thursday: workday, Friday: workday,
				},
				TimeZone:          "America/New_York",
				ConsultationTypes: []string{"video", "audio", "chat"},
			},
			Consultation: provider.ConsultationInfo{Fee: 150, Duration: 30, EmergencyAvailable: true},
			Ratings:      provider.Ratings{AverageRating: 4.9, TotalReviews: 127, PatientSatisfaction: 96},
		},
		{
			PersonalInfo: provider.PersonalInfo{
				FirstName:     "Michael",
				LastName:      "Chen",
				Title:         "MD",
				Specialty:     "Cardiology",
				SubSpecialty:  "Interventional Cardiology",
				LicenseNumber: "MD789012",
				NPINumber:     "0987654321",
				Email:         "m.chen@vitalink.example",
			},
			Credentials: provider.Credentials{
				MedicalSchool:       "Stanford University School of Medicine",
				Residency:           "UCSF Medical Center",
				Fellowship:          "Cleveland Clinic",
				BoardCertifications: []string{"Cardiovascular Disease", "Interventional Cardiology"},
				YearsOfExperience:   15,
			},
			Availability: provider.Availability{
				Schedule: provider.WeeklySchedule{
					Monday: workday, Tuesday: workday, Wednesday: workday,
					Thursday: workday, Friday: workday,
					Saturday: weekdays("08:00", "12:00"),
				},
				TimeZone:          "America/Los_Angeles",
				ConsultationTypes: []string{"video", "chat"},
			},
			Consultation: provider.ConsultationInfo{Fee: 250, Duration: 45, EmergencyAvailable: true},
			Ratings:      provider.Ratings{AverageRating: 4.8, TotalReviews: 89, PatientSatisfaction: 94},
		},
	}
}

func demoPatient() *patient.Patient {
	onset := 45
	return &patient.Patient{
		PersonalInfo: patient.PersonalInfo{
			FirstName:   "John",
			LastName:    "Doe",
			DateOfBirth: time.Date(1985, 6, 15, 0, 0, 0, 0, time.UTC),
			Gender:      "male",
			BloodType:   "O+",
			Height:      175,
			Weight:      75,
			Phone:       "+1-555-0100",
			Email:       "john.doe@example.com",
			Address: patient.Address{
				Street: "123 Main St", City: "Springfield", State: "IL",
				ZipCode: "62701", Country: "USA",
			},
			EmergencyContact: patient.EmergencyContact{
				Name: "Jane Doe", Relationship: "spouse", Phone: "+1-555-0101",
			},
		},
		MedicalHistory: patient.MedicalHistory{
			Allergies: []patient.Allergy{
				{
					Allergen: "Penicillin",
					Type:     "medication",
					Severity: "moderate",
					Reaction: "Rash and itching",
				},
			},
			FamilyHistory: []patient.FamilyHistory{
				{
					Relationship: "father",
					Condition:    "hypertension",
					AgeOfOnset:   &onset,
				},
			},
		},
		CurrentMedications: []patient.Medication{
			{
				Name:           "Lisinopril",
				Dosage:         "10mg",
				Frequency:      "once daily",
				Times:          []string{"08:00"},
				StartDate:      time.Now().UTC().AddDate(0, -2, 0),
				TotalPills:     30,
				RemainingPills: 22,
				Instructions:   "Take with water in the morning",
			},
		},
	}
}
