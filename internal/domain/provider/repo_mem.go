package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memRepo struct {
	mu        sync.RWMutex
	providers map[uuid.UUID]*Provider
}

func NewMemRepo() Repository {
	return &memRepo{providers: make(map[uuid.UUID]*Provider)}
}

func (r *memRepo) Create(ctx context.Context, p *Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = p.Clone()
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *memRepo) Update(ctx context.Context, p *Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[p.ID]; !ok {
		return ErrNotFound
	}
	r.providers[p.ID] = p.Clone()
	return nil
}

func (r *memRepo) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.snapshot()
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

func (r *memRepo) ListActive(ctx context.Context) ([]*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*Provider
	for _, p := range r.snapshot() {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active, nil
}

func (r *memRepo) snapshot() []*Provider {
	all := make([]*Provider, 0, len(r.providers))
	for _, p := range r.providers {
		all = append(all, p.Clone())
	}
	return all
}
