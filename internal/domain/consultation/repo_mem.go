package consultation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	reviews  map[uuid.UUID]*Review
}

func NewMemRepo() Repository {
	return &memRepo{
		sessions: make(map[uuid.UUID]*Session),
		reviews:  make(map[uuid.UUID]*Review),
	}
}

func (r *memRepo) CreateSession(ctx context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *memRepo) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (r *memRepo) UpdateSession(ctx context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *memRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Session, error) {
	return r.filtered(func(s *Session) bool { return s.PatientID == patientID }), nil
}

func (r *memRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*Session, error) {
	return r.filtered(func(s *Session) bool { return s.ProviderID == providerID }), nil
}

func (r *memRepo) filtered(keep func(*Session) bool) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Session
	for _, s := range r.sessions {
		if keep(s) {
			all = append(all, s.Clone())
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScheduledTime.After(all[j].ScheduledTime) })
	return all
}

func (r *memRepo) IsBooked(ctx context.Context, providerID uuid.UUID, start time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.ProviderID == providerID && s.Status != StatusCancelled && s.ScheduledTime.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) AddReview(ctx context.Context, rev *Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rev
	r.reviews[rev.ID] = &cp
	return nil
}

func (r *memRepo) ListReviews(ctx context.Context, providerID uuid.UUID) ([]*Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Review
	for _, rev := range r.reviews {
		if rev.ProviderID == providerID {
			cp := *rev
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
