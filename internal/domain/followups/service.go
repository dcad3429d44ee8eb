package followups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoption-center/internal/domain/pets"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("version conflict")

	// ErrAlreadyCompleted: un seguimiento completado es inmutable y ya engendró
	// (o renunció a) su sucesor.
	ErrAlreadyCompleted = errors.New("follow-up already completed")
)

type Service struct {
	repo Repository
	pets pets.Repository
	now  func() time.Time
}

func NewService(repo Repository, petRepo pets.Repository) *Service {
	return &Service{
		repo: repo,
		pets: petRepo,
		now:  time.Now,
	}
}

// resolvePet distingue "mascota inexistente" (not found) de "sin seguimientos".
func (s *Service) resolvePet(ctx context.Context, petID string) error {
	_, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return fmt.Errorf("%w: pet %s", ErrNotFound, petID)
		}
		return err
	}
	return nil
}

type ScheduleInput struct {
	PetID         string
	RequestID     string
	Type          string
	Scheduled     time.Time
	ResponsibleBy string
}

// Schedule crea un seguimiento manual (fuera de la cadencia automática),
// típicamente uno de tipo issue tras un reporte.
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (FollowUp, error) {
	if strings.TrimSpace(in.PetID) == "" {
		return FollowUp{}, ErrInvalidInput
	}
	t := Type(strings.TrimSpace(in.Type))
	if !validType(t) {
		return FollowUp{}, ErrInvalidInput
	}
	if in.Scheduled.IsZero() {
		return FollowUp{}, ErrInvalidInput
	}
	if err := s.resolvePet(ctx, strings.TrimSpace(in.PetID)); err != nil {
		return FollowUp{}, err
	}

	now := s.now()
	f := FollowUp{
		ID:            uuid.NewString(),
		PetID:         strings.TrimSpace(in.PetID),
		RequestID:     strings.TrimSpace(in.RequestID),
		Type:          t,
		Scheduled:     in.Scheduled,
		Completed:     false,
		ResponsibleBy: strings.TrimSpace(in.ResponsibleBy),
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return FollowUp{}, err
	}
	return f, nil
}

type CompleteInput struct {
	Condition     string
	Observations  string
	ResponsibleBy string

	// SpawnNext pide crear el sucesor de la cadencia. Es opt-in por visita:
	// hay condiciones que la cortan (animal devuelto, fallecido).
	SpawnNext bool
	// NextDue es la fecha del sucesor; obligatoria si SpawnNext.
	NextDue *time.Time
}

// Complete marca la visita como realizada y, si el caller lo pide, engendra
// exactamente un sucesor con el tipo que dicta la cadencia.
// Devuelve la visita completada y el sucesor (nil si no se pidió).
func (s *Service) Complete(ctx context.Context, id string, in CompleteInput) (FollowUp, *FollowUp, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return FollowUp{}, nil, ErrInvalidInput
	}
	cond := Condition(strings.TrimSpace(in.Condition))
	if !validCondition(cond) {
		return FollowUp{}, nil, ErrInvalidInput
	}
	if in.SpawnNext && in.NextDue == nil {
		return FollowUp{}, nil, ErrInvalidInput
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return FollowUp{}, nil, err
	}
	if f.Completed {
		return f, nil, ErrAlreadyCompleted
	}

	now := s.now()
	f.Completed = true
	f.CompletedAt = &now
	f.Condition = cond
	f.Observations = strings.TrimSpace(in.Observations)
	if by := strings.TrimSpace(in.ResponsibleBy); by != "" {
		f.ResponsibleBy = by
	}
	f.UpdatedAt = now

	if err := s.repo.Update(ctx, f); err != nil {
		return f, nil, err
	}
	f.Version++

	if !in.SpawnNext {
		return f, nil, nil
	}

	next := successor(f, *in.NextDue, now)
	if err := s.repo.Create(ctx, next); err != nil {
		// La visita quedó completada pero el sucesor no se creó; el caller
		// puede reintentar agendándolo a mano.
		return f, nil, err
	}
	return f, &next, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (FollowUp, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return FollowUp{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]FollowUp, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	if err := s.resolvePet(ctx, petID); err != nil {
		return nil, err
	}
	return s.repo.ListByPet(ctx, petID)
}
