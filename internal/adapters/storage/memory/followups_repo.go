package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoption-center/internal/domain/followups"
)

type followUpRepo struct {
	s *Store
}

func (r *followUpRepo) Create(ctx context.Context, f followups.FollowUp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(f.ID) == "" {
		return errors.New("follow-up id required")
	}
	if _, exists := r.s.fus[f.ID]; exists {
		return errors.New("follow-up already exists")
	}
	if f.Version == 0 {
		f.Version = 1
	}
	r.s.fus[f.ID] = f
	return nil
}

func (r *followUpRepo) GetByID(ctx context.Context, id string) (followups.FollowUp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.fus[id]
	if !ok {
		return followups.FollowUp{}, followups.ErrNotFound
	}
	return f, nil
}

func (r *followUpRepo) Update(ctx context.Context, f followups.FollowUp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, exists := r.s.fus[f.ID]
	if !exists {
		return followups.ErrNotFound
	}
	if current.Version != f.Version {
		return followups.ErrConflict
	}
	f.Version++
	r.s.fus[f.ID] = f
	return nil
}

func (r *followUpRepo) ListByPet(ctx context.Context, petID string) ([]followups.FollowUp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]followups.FollowUp, 0)
	for _, f := range r.s.fus {
		if f.PetID == petID {
			out = append(out, f)
		}
	}
	sortFollowUps(out)
	return out, nil
}

func (r *followUpRepo) List(ctx context.Context, filter followups.ListFilter) ([]followups.FollowUp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]followups.FollowUp, 0)
	for _, f := range r.s.fus {
		if len(filter.Types) > 0 && !containsType(filter.Types, f.Type) {
			continue
		}
		if filter.Completed != nil && f.Completed != *filter.Completed {
			continue
		}
		out = append(out, f)
	}
	sortFollowUps(out)

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func sortFollowUps(fs []followups.FollowUp) {
	sort.Slice(fs, func(i, j int) bool {
		return fs[i].Scheduled.Before(fs[j].Scheduled)
	})
}

func containsType(ts []followups.Type, t followups.Type) bool {
	for _, v := range ts {
		if v == t {
			return true
		}
	}
	return false
}
