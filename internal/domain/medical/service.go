package medical

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoption-center/internal/domain/pets"
	"adoption-center/internal/domain/status"
	"adoption-center/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	pets pets.Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, petRepo pets.Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		pets: petRepo,
		log:  log,
		now:  time.Now,
	}
}

type LogInput struct {
	Kind        string
	EventDate   time.Time
	NextDose    *time.Time
	Sterilizing bool
	Notes       string
}

// Log registra un evento veterinario para la mascota. Además del append al
// historial, mantiene las banderas sanitarias de la mascota: una vacuna sin
// dosis pendiente (según el resolver de estados) marca Vaccinated, una
// desparasitación marca Dewormed y una cirugía de esterilización marca
// Sterilized. Las banderas nunca se desmarcan desde acá.
func (s *Service) Log(ctx context.Context, petID string, in LogInput) (MedicalRecord, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return MedicalRecord{}, ErrInvalidInput
	}
	kind := Kind(strings.TrimSpace(in.Kind))
	if !validKind(kind) {
		return MedicalRecord{}, ErrInvalidInput
	}
	if in.EventDate.IsZero() {
		return MedicalRecord{}, ErrInvalidInput
	}
	if in.NextDose != nil && kind != KindVaccine {
		return MedicalRecord{}, fmt.Errorf("%w: next_dose only applies to vaccines", ErrInvalidInput)
	}
	if in.Sterilizing && kind != KindSurgery {
		return MedicalRecord{}, fmt.Errorf("%w: sterilizing only applies to surgeries", ErrInvalidInput)
	}

	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return MedicalRecord{}, ErrNotFound
		}
		return MedicalRecord{}, err
	}

	now := s.now()
	rec := MedicalRecord{
		ID:          uuid.NewString(),
		PetID:       petID,
		Kind:        kind,
		EventDate:   in.EventDate,
		NextDose:    in.NextDose,
		Sterilizing: in.Sterilizing,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return MedicalRecord{}, err
	}

	if flag := s.flagFor(rec, now); flag != nil {
		flag(&p)
		p.UpdatedAt = now
		// Best-effort: el historial ya quedó escrito; un conflicto acá lo
		// resuelve el próximo registro. Queda logueado para que un operador
		// sepa que la bandera no avanzó.
		if err := s.pets.Update(ctx, p); err != nil {
			s.warn("health flag update failed", map[string]any{
				"pet_id":    p.ID,
				"record_id": rec.ID,
				"kind":      string(rec.Kind),
				"error":     err.Error(),
			})
		}
	}

	return rec, nil
}

// flagFor decide qué bandera sanitaria enciende el registro, usando el
// resolver de estados para vacunas (solo cuenta como "vacunado" si no queda
// dosis pendiente vencible de inmediato).
func (s *Service) flagFor(rec MedicalRecord, now time.Time) func(*pets.Pet) {
	switch rec.Kind {
	case KindVaccine:
		if status.ForVaccine(rec.NextDose, now) == status.VaccinationOverdue {
			return nil
		}
		return func(p *pets.Pet) { p.Vaccinated = true }
	case KindDeworming:
		return func(p *pets.Pet) { p.Dewormed = true }
	case KindSurgery:
		if !rec.Sterilizing {
			return nil
		}
		return func(p *pets.Pet) { p.Sterilized = true }
	default:
		return nil
	}
}

func (s *Service) warn(msg string, fields map[string]any) {
	if s.log == nil {
		return
	}
	s.log.Warn(msg, fields)
}

func (s *Service) ListByPet(ctx context.Context, petID string, f ListFilter) ([]MedicalRecord, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	// Mascota inexistente es 404, no historial vacío.
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.ListByPet(ctx, petID, f)
}

// VaccinationStatus deriva el estado de vacunación actual de la mascota a
// partir de su última vacuna registrada. No guarda nada: se computa al leer.
func (s *Service) VaccinationStatus(ctx context.Context, petID string) (status.Vaccination, error) {
	recs, err := s.repo.ListByPet(ctx, petID, ListFilter{Kinds: []Kind{KindVaccine}})
	if err != nil {
		return "", err
	}

	var latest *MedicalRecord
	for i := range recs {
		if latest == nil || recs[i].EventDate.After(latest.EventDate) {
			latest = &recs[i]
		}
	}
	if latest == nil {
		return status.VaccinationApplied, nil
	}
	return status.ForVaccine(latest.NextDose, s.now()), nil
}
