package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// BookingLookup reports whether a provider already has a booking starting at
// the given time. Wired to the consultation store so slot generation can
// mark taken slots.
type BookingLookup interface {
	IsBooked(ctx context.Context, providerID uuid.UUID, start time.Time) (bool, error)
}

type Service struct {
	providers Repository
	bookings  BookingLookup
}

// NewService creates the provider service. bookings may be nil, in which
// case all generated slots are reported available.
func NewService(providers Repository, bookings BookingLookup) *Service {
	return &Service{providers: providers, bookings: bookings}
}

func (s *Service) Create(ctx context.Context, p *Provider) error {
	if p.PersonalInfo.FirstName == "" {
		return fmt.Errorf("firstName is required")
	}
	if p.PersonalInfo.LastName == "" {
		return fmt.Errorf("lastName is required")
	}
	if p.PersonalInfo.Specialty == "" {
		return fmt.Errorf("specialty is required")
	}
	if p.IsActive == nil {
		active := true
		p.IsActive = &active
	}
	if p.Consultation.Duration <= 0 {
		p.Consultation.Duration = 30
	}

	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.providers.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.providers.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	return s.providers.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, p *Provider) error {
	p.UpdatedAt = time.Now().UTC()
	return s.providers.Update(ctx, p)
}

// Filters narrows the active-provider directory.
type Filters struct {
	Specialty        string
	MinRating        float64
	MinExperience    int
	ConsultationType string
	EmergencyOnly    bool
}

// Available returns active providers matching the filters, best-rated first.
func (s *Service) Available(ctx context.Context, f Filters) ([]*Provider, error) {
	active, err := s.providers.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*Provider, 0, len(active))
	for _, p := range active {
		if !p.MatchesSpecialty(f.Specialty) {
			continue
		}
		if f.MinRating > 0 && p.Ratings.AverageRating < f.MinRating {
			continue
		}
		if f.MinExperience > 0 && p.Credentials.YearsOfExperience < f.MinExperience {
			continue
		}
		if f.ConsultationType != "" && !p.OffersConsultationType(f.ConsultationType) {
			continue
		}
		if f.EmergencyOnly && !p.Consultation.EmergencyAvailable {
			continue
		}
		matched = append(matched, p)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Ratings.AverageRating > matched[j].Ratings.AverageRating
	})
	return matched, nil
}

// SetRatings replaces the rating aggregate after a new review.
func (s *Service) SetRatings(ctx context.Context, id uuid.UUID, averageRating float64, totalReviews int) error {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	p.Ratings.AverageRating = averageRating
	p.Ratings.TotalReviews = totalReviews
	p.UpdatedAt = time.Now().UTC()
	return s.providers.Update(ctx, p)
}

const slotMinutes = 30

// Availability generates the provider's 30-minute slots for a calendar day
// from the weekly working hours, excluding break windows, and marks slots
// with an existing booking as taken.
func (s *Service) Availability(ctx context.Context, id uuid.UUID, date time.Time) ([]AvailabilitySlot, error) {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	day := p.Availability.Schedule.Day(date.Weekday())
	if !day.IsAvailable {
		return []AvailabilitySlot{}, nil
	}

	start, err := atClock(date, day.StartTime)
	if err != nil {
		return nil, fmt.Errorf("bad startTime %q: %w", day.StartTime, err)
	}
	end, err := atClock(date, day.EndTime)
	if err != nil {
		return nil, fmt.Errorf("bad endTime %q: %w", day.EndTime, err)
	}

	var slots []AvailabilitySlot
	for cur := start; cur.Before(end); cur = cur.Add(slotMinutes * time.Minute) {
		slotEnd := cur.Add(slotMinutes * time.Minute)
		if slotEnd.After(end) {
			break
		}
		if overlapsBreak(date, day.Breaks, cur, slotEnd) {
			continue
		}

		available := true
		if s.bookings != nil {
			booked, err := s.bookings.IsBooked(ctx, id, cur)
			if err != nil {
				return nil, err
			}
			available = !booked
		}
		slots = append(slots, AvailabilitySlot{StartTime: cur, EndTime: slotEnd, Available: available})
	}
	return slots, nil
}

// atClock combines a calendar date with an "HH:MM" clock string.
func atClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

func overlapsBreak(date time.Time, breaks []TimeSlot, start, end time.Time) bool {
	for _, b := range breaks {
		bs, err1 := atClock(date, b.StartTime)
		be, err2 := atClock(date, b.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if start.Before(be) && bs.Before(end) {
			return true
		}
	}
	return false
}
