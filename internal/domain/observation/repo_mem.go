package observation

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memRepo struct {
	mu     sync.RWMutex
	vitals map[uuid.UUID][]*VitalSignRecord
	labs   map[uuid.UUID][]*LabResult
	scans  map[uuid.UUID][]*HealthScan
}

func NewMemRepo() Repository {
	return &memRepo{
		vitals: make(map[uuid.UUID][]*VitalSignRecord),
		labs:   make(map[uuid.UUID][]*LabResult),
		scans:  make(map[uuid.UUID][]*HealthScan),
	}
}

func (r *memRepo) AddVitalSign(ctx context.Context, v *VitalSignRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vitals[v.PatientID] = append(r.vitals[v.PatientID], v.Clone())
	return nil
}

func (r *memRepo) ListVitalSigns(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalSignRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*VitalSignRecord, 0, len(r.vitals[patientID]))
	for _, v := range r.vitals[patientID] {
		items = append(items, v.Clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
	return truncate(items, limit), nil
}

func (r *memRepo) AddLabResult(ctx context.Context, l *LabResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.labs[l.PatientID] = append(r.labs[l.PatientID], &cp)
	return nil
}

func (r *memRepo) ListLabResults(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*LabResult, 0, len(r.labs[patientID]))
	for _, l := range r.labs[patientID] {
		cp := *l
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ResultDate.After(items[j].ResultDate) })
	return truncate(items, limit), nil
}

func (r *memRepo) AddHealthScan(ctx context.Context, s *HealthScan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans[s.PatientID] = append(r.scans[s.PatientID], s.Clone())
	return nil
}

func (r *memRepo) ListHealthScans(ctx context.Context, patientID uuid.UUID, limit int) ([]*HealthScan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*HealthScan, 0, len(r.scans[patientID]))
	for _, s := range r.scans[patientID] {
		items = append(items, s.Clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Timestamp.After(items[j].Timestamp) })
	return truncate(items, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
