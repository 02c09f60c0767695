package appointment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memRepo struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*Appointment
}

func NewMemRepo() Repository {
	return &memRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (r *memRepo) Create(ctx context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = a.Clone()
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (r *memRepo) Update(ctx context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	r.appointments[a.ID] = a.Clone()
	return nil
}

func (r *memRepo) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.filtered(func(*Appointment) bool { return true }, limit, offset)
}

func (r *memRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.filtered(func(a *Appointment) bool { return a.PatientID == patientID }, limit, offset)
}

func (r *memRepo) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.filtered(func(a *Appointment) bool { return a.ProviderID == providerID }, limit, offset)
}

func (r *memRepo) filtered(keep func(*Appointment) bool, limit, offset int) ([]*Appointment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Appointment
	for _, a := range r.appointments {
		if keep(a) {
			all = append(all, a.Clone())
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScheduledDate.After(all[j].ScheduledDate) })

	total := len(all)
	lo := offset
	if lo > total {
		lo = total
	}
	hi := lo + limit
	if hi > total {
		hi = total
	}
	return all[lo:hi], total, nil
}
