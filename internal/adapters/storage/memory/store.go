// Package memory implementa los repositorios sobre mapas en memoria.
// Sirve para dev y tests. Todos los repos comparten un Store con un solo
// lock, lo que permite aplicar la aprobación (mascota + solicitud +
// seguimiento) como unidad real.
package memory

import (
	"sync"

	"adoption-center/internal/domain/adoptions"
	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/medical"
	"adoption-center/internal/domain/pets"
)

type Store struct {
	mu sync.RWMutex

	pets     map[string]pets.Pet
	requests map[string]adoptions.AdoptionRequest
	fus      map[string]followups.FollowUp
	medical  map[string]medical.MedicalRecord
}

func NewStore() *Store {
	return &Store{
		pets:     make(map[string]pets.Pet),
		requests: make(map[string]adoptions.AdoptionRequest),
		fus:      make(map[string]followups.FollowUp),
		medical:  make(map[string]medical.MedicalRecord),
	}
}

func (s *Store) Pets() pets.Repository           { return &petRepo{s: s} }
func (s *Store) Requests() adoptions.Repository  { return &requestRepo{s: s} }
func (s *Store) FollowUps() followups.Repository { return &followUpRepo{s: s} }
func (s *Store) Medical() medical.Repository     { return &medicalRepo{s: s} }

// cloneRequest copia la solicitud con su slice de notas, para que los
// callers no vean mutaciones ajenas por aliasing.
func cloneRequest(r adoptions.AdoptionRequest) adoptions.AdoptionRequest {
	if len(r.Notes) > 0 {
		notes := make([]adoptions.Note, len(r.Notes))
		copy(notes, r.Notes)
		r.Notes = notes
	}
	return r
}
