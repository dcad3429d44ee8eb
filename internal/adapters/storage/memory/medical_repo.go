package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoption-center/internal/domain/medical"
)

type medicalRepo struct {
	s *Store
}

func (r *medicalRepo) Create(ctx context.Context, rec medical.MedicalRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("medical record id required")
	}
	if _, exists := r.s.medical[rec.ID]; exists {
		return errors.New("medical record already exists")
	}
	r.s.medical[rec.ID] = rec
	return nil
}

func (r *medicalRepo) GetByID(ctx context.Context, id string) (medical.MedicalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.medical[id]
	if !ok {
		return medical.MedicalRecord{}, medical.ErrNotFound
	}
	return rec, nil
}

func (r *medicalRepo) ListByPet(ctx context.Context, petID string, f medical.ListFilter) ([]medical.MedicalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]medical.MedicalRecord, 0)
	for _, rec := range r.s.medical {
		if rec.PetID != petID {
			continue
		}
		if len(f.Kinds) > 0 && !containsKind(f.Kinds, rec.Kind) {
			continue
		}
		out = append(out, rec)
	}

	// Más reciente primero, como historial clínico.
	sort.Slice(out, func(i, j int) bool {
		return out[i].EventDate.After(out[j].EventDate)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func containsKind(ks []medical.Kind, k medical.Kind) bool {
	for _, v := range ks {
		if v == k {
			return true
		}
	}
	return false
}
