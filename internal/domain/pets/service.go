package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrConflict indica un choque de versiones (otro writer ganó). Reintentable
	// tras releer el registro.
	ErrConflict = errors.New("version conflict")

	// ErrIllegalTransition indica un cambio de disponibilidad que las reglas no permiten.
	ErrIllegalTransition = errors.New("illegal availability transition")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type IntakeInput struct {
	Name       string
	Species    string
	Breed      string
	Sex        string
	BirthDate  *time.Time
	IntakeType string
	IntakeDate *time.Time // nil = ahora
	Notes      string
}

// Intake registra un animal nuevo. Siempre entra como available.
func (s *Service) Intake(ctx context.Context, in IntakeInput) (Pet, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}

	species := Species(strings.TrimSpace(in.Species))
	if species != SpeciesDog && species != SpeciesCat {
		return Pet{}, ErrInvalidInput
	}

	sex := Sex(strings.TrimSpace(in.Sex))
	if sex == "" {
		sex = SexUnknown
	}
	if sex != SexMale && sex != SexFemale && sex != SexUnknown {
		return Pet{}, ErrInvalidInput
	}

	intake := IntakeType(strings.TrimSpace(in.IntakeType))
	if intake == "" {
		intake = IntakeOther
	}
	if !validIntake(intake) {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	intakeDate := now
	if in.IntakeDate != nil {
		intakeDate = *in.IntakeDate
	}

	p := Pet{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Species:    species,
		Breed:      strings.TrimSpace(in.Breed),
		Sex:        sex,
		BirthDate:  in.BirthDate,
		IntakeType: intake,
		IntakeDate: intakeDate,
		Status:     StatusAvailable,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, error) {
	return s.repo.List(ctx, f)
}

// OverrideAvailability es el override administrativo: devuelve un animal a
// available (mascota devuelta, adopción caída). Solo es legal desde adopted o
// in_process, y limpia fecha de adopción y adoptante para sostener el
// invariante AdoptionDate ⇔ adopted.
// Devuelve siempre el estado autoritativo actual, incluso en error, para que
// el caller decida si reintenta.
func (s *Service) OverrideAvailability(ctx context.Context, petID string, target AvailabilityStatus) (Pet, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" || !validStatus(target) {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}

	if target != StatusAvailable {
		// adopted/in_process solo los asigna el motor de adopciones.
		return p, ErrIllegalTransition
	}
	if p.Status == StatusAvailable {
		// Idempotente.
		return p, nil
	}

	p.Status = StatusAvailable
	p.AdoptionDate = nil
	p.AdopterID = ""
	p.AdopterName = ""
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return p, err
	}
	p.Version++
	return p, nil
}
