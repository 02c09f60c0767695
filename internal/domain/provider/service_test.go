package provider

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleProvider(specialty string, rating float64, years int) *Provider {
	return &Provider{
		PersonalInfo: PersonalInfo{
			FirstName: "Sarah",
			LastName:  "Mitchell",
			Title:     "MD",
			Specialty: specialty,
		},
		Credentials: Credentials{YearsOfExperience: years},
		Availability: Availability{
			Schedule: WeeklySchedule{
				Monday: DaySchedule{
					IsAvailable: true,
					StartTime:   "08:00",
					EndTime:     "12:00",
					Breaks:      []TimeSlot{{StartTime: "10:00", EndTime: "10:30"}},
				},
			},
			TimeZone:          "America/New_York",
			ConsultationTypes: []string{"in-person", "telemedicine"},
		},
		Consultation: ConsultationInfo{Fee: 150, Duration: 30},
		Ratings:      Ratings{AverageRating: rating},
	}
}

func TestAvailableFiltersAndSorts(t *testing.T) {
	svc := NewService(NewMemRepo(), nil)
	ctx := context.Background()

	cardio := sampleProvider("Cardiology", 4.8, 15)
	internal := sampleProvider("Internal Medicine", 4.9, 12)
	inactive := sampleProvider("Cardiology", 5.0, 20)
	off := false
	inactive.IsActive = &off

	for _, p := range []*Provider{cardio, internal, inactive} {
		if err := svc.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := svc.Available(ctx, Filters{})
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active providers, got %d", len(got))
	}
	if got[0].Ratings.AverageRating < got[1].Ratings.AverageRating {
		t.Error("expected best-rated first")
	}

	got, err = svc.Available(ctx, Filters{Specialty: "cardio"})
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(got) != 1 || got[0].ID != cardio.ID {
		t.Errorf("expected only the active cardiologist, got %d results", len(got))
	}

	got, _ = svc.Available(ctx, Filters{MinRating: 4.85})
	if len(got) != 1 || got[0].ID != internal.ID {
		t.Errorf("expected only the 4.9-rated provider, got %d results", len(got))
	}

	got, _ = svc.Available(ctx, Filters{MinExperience: 14})
	if len(got) != 1 || got[0].ID != cardio.ID {
		t.Errorf("expected only the 15-year provider, got %d results", len(got))
	}

	got, _ = svc.Available(ctx, Filters{ConsultationType: "video"})
	if len(got) != 0 {
		t.Errorf("expected no video providers, got %d", len(got))
	}
}

func TestSubSpecialtyMatches(t *testing.T) {
	p := sampleProvider("Cardiology", 4.8, 15)
	p.PersonalInfo.SubSpecialty = "Interventional Cardiology"
	if !p.MatchesSpecialty("interventional") {
		t.Error("expected sub-specialty substring to match")
	}
}

type stubBookings struct {
	booked map[time.Time]bool
}

func (s *stubBookings) IsBooked(ctx context.Context, providerID uuid.UUID, start time.Time) (bool, error) {
	return s.booked[start], nil
}

func TestAvailabilitySlots(t *testing.T) {
	// 2026-09-07 is a Monday.
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	svc := NewService(NewMemRepo(), nil)
	ctx := context.Background()
	p := sampleProvider("Internal Medicine", 4.9, 12)
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	slots, err := svc.Availability(ctx, p.ID, monday)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	// 08:00-12:00 yields 8 half-hour slots, minus the 10:00-10:30 break.
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("slot %v should be available without bookings", s.StartTime)
		}
		if s.StartTime.Hour() == 10 && s.StartTime.Minute() == 0 {
			t.Error("break slot must be excluded")
		}
	}

	// Sunday has no schedule.
	sunday := monday.AddDate(0, 0, -1)
	slots, err = svc.Availability(ctx, p.ID, sunday)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on an unavailable day, got %d", len(slots))
	}
}

func TestAvailabilityMarksBookedSlots(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	nine := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	bookings := &stubBookings{booked: map[time.Time]bool{nine: true}}
	svc := NewService(NewMemRepo(), bookings)
	ctx := context.Background()
	p := sampleProvider("Internal Medicine", 4.9, 12)
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	slots, err := svc.Availability(ctx, p.ID, monday)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	var found bool
	for _, s := range slots {
		if s.StartTime.Equal(nine) {
			found = true
			if s.Available {
				t.Error("expected 09:00 slot to be marked booked")
			}
		}
	}
	if !found {
		t.Error("expected a 09:00 slot")
	}
}

func TestSetRatings(t *testing.T) {
	svc := NewService(NewMemRepo(), nil)
	ctx := context.Background()
	p := sampleProvider("Cardiology", 0, 15)
	if err := svc.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SetRatings(ctx, p.ID, 4.5, 2); err != nil {
		t.Fatalf("set ratings: %v", err)
	}
	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Ratings.AverageRating != 4.5 || got.Ratings.TotalReviews != 2 {
		t.Errorf("unexpected ratings: %+v", got.Ratings)
	}
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(NewMemRepo(), nil)
	p := sampleProvider("Cardiology", 4.8, 15)
	p.Consultation.Duration = 0
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !p.Active() {
		t.Error("expected provider active by default")
	}
	if p.Consultation.Duration != 30 {
		t.Errorf("expected default duration 30, got %d", p.Consultation.Duration)
	}
}
