package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoption-center/internal/domain/pets"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}
	if p.Version == 0 {
		p.Version = 1
	}
	r.s.pets[p.ID] = p
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return updatePetLocked(r.s, p)
}

// updatePetLocked aplica el CAS; el caller tiene el lock.
func updatePetLocked(s *Store, p pets.Pet) error {
	current, exists := s.pets[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	if current.Version != p.Version {
		return pets.ErrConflict
	}
	p.Version++
	s.pets[p.ID] = p
	return nil
}

func (r *petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.s.pets {
		if !matchPet(p, f) {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matchPet(p pets.Pet, f pets.ListFilter) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, p.Status) {
		return false
	}
	if len(f.IntakeTypes) > 0 && !containsIntake(f.IntakeTypes, p.IntakeType) {
		return false
	}
	return true
}

func containsStatus(ss []pets.AvailabilityStatus, s pets.AvailabilityStatus) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func containsIntake(ts []pets.IntakeType, t pets.IntakeType) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}
