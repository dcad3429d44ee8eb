package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"adoption-center/internal/domain/adoptions"
	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
)

type requestRepo struct {
	s *Store
}

func (r *requestRepo) Create(ctx context.Context, req adoptions.AdoptionRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.s.requests[req.ID]; exists {
		return errors.New("request already exists")
	}
	if req.Version == 0 {
		req.Version = 1
	}
	r.s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (adoptions.AdoptionRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[id]
	if !ok {
		return adoptions.AdoptionRequest{}, adoptions.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (r *requestRepo) Update(ctx context.Context, req adoptions.AdoptionRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return updateRequestLocked(r.s, req)
}

func updateRequestLocked(s *Store, req adoptions.AdoptionRequest) error {
	current, exists := s.requests[req.ID]
	if !exists {
		return adoptions.ErrNotFound
	}
	if current.Version != req.Version {
		return adoptions.ErrConflict
	}
	req.Version++
	s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *requestRepo) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.AdoptionRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]adoptions.AdoptionRequest, 0)
	for _, req := range r.s.requests {
		if f.PetID != "" && req.PetID != f.PetID {
			continue
		}
		if len(f.Statuses) > 0 && !containsReqStatus(f.Statuses, req.Status) {
			continue
		}
		out = append(out, cloneRequest(req))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ApplyApproval escribe mascota, solicitud y seguimiento inicial bajo un
// solo lock: o entran los tres o no entra ninguno.
func (r *requestRepo) ApplyApproval(ctx context.Context, p pets.Pet, req adoptions.AdoptionRequest, f followups.FollowUp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	currentPet, exists := r.s.pets[p.ID]
	if !exists {
		return pets.ErrNotFound
	}
	if currentPet.Version != p.Version {
		return pets.ErrConflict
	}
	currentReq, exists := r.s.requests[req.ID]
	if !exists {
		return adoptions.ErrNotFound
	}
	if currentReq.Version != req.Version {
		return adoptions.ErrConflict
	}
	if _, exists := r.s.fus[f.ID]; exists {
		return errors.New("follow-up already exists")
	}

	p.Version++
	req.Version++
	if f.Version == 0 {
		f.Version = 1
	}
	r.s.pets[p.ID] = p
	r.s.requests[req.ID] = cloneRequest(req)
	r.s.fus[f.ID] = f
	return nil
}

func containsReqStatus(ss []adoptions.Status, s adoptions.Status) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
