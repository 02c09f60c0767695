package patient

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memRepo is the in-memory store used when no database is configured. Every
// instance owns its own map so tests and processes never share state. All
// records cross the repo boundary as deep copies; handlers run concurrently
// and must never share slice backing arrays with the store.
type memRepo struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*Patient
}

func NewMemRepo() Repository {
	return &memRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (r *memRepo) Create(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p.Clone()
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *memRepo) Update(ctx context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; !ok {
		return ErrNotFound
	}
	r.patients[p.ID] = p.Clone()
	return nil
}

func (r *memRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		all = append(all, p.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

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
