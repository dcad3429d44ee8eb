package adoptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
	"adoption-center/internal/platform/logger"
	"adoption-center/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrConflict: la solicitud cambió entre la lectura y el write (CAS falló).
	// Reintentable: el caller relee y vuelve a intentar.
	ErrConflict = errors.New("version conflict")

	// ErrPartialApply: una aprobación falló después de escrituras parciales.
	// No se auto-corrige (adivinar intención es peor); queda logueado y el
	// reporte de consistencia lo detecta.
	ErrPartialApply = errors.New("partial application")
)

type Service struct {
	reqs     Repository
	pets     pets.Repository
	fus      followups.Repository
	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(reqs Repository, petRepo pets.Repository, fuRepo followups.Repository, notifier notify.Notifier, log logger.Logger) *Service {
	return &Service{
		reqs:     reqs,
		pets:     petRepo,
		fus:      fuRepo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

type SubmitInput struct {
	PetID            string
	ApplicantID      string
	ApplicantName    string
	ApplicantContact string
	Note             string
}

// Submit registra una solicitud pública. Nace en estado new.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (AdoptionRequest, error) {
	petID := strings.TrimSpace(in.PetID)
	if petID == "" || strings.TrimSpace(in.ApplicantName) == "" {
		return AdoptionRequest{}, ErrInvalidInput
	}

	p, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return AdoptionRequest{}, fmt.Errorf("%w: pet %s", ErrNotFound, petID)
		}
		return AdoptionRequest{}, err
	}
	if p.Status == pets.StatusAdopted {
		return AdoptionRequest{}, fmt.Errorf("%w: pet already adopted", ErrInvalidInput)
	}

	now := s.now()
	r := AdoptionRequest{
		ID:               uuid.NewString(),
		PetID:            petID,
		ApplicantID:      strings.TrimSpace(in.ApplicantID),
		ApplicantName:    strings.TrimSpace(in.ApplicantName),
		ApplicantContact: strings.TrimSpace(in.ApplicantContact),
		Status:           StatusNew,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		r.Notes = append(r.Notes, Note{
			Author:  r.ApplicantName,
			At:      now,
			Content: note,
		})
	}

	if err := s.reqs.Create(ctx, r); err != nil {
		return AdoptionRequest{}, err
	}
	return r, nil
}

type NoteInput struct {
	Author  string
	Content string
}

// Transition mueve la solicitud a target y dispara los efectos del flujo:
// sella el timestamp de la etapa (una sola vez), pone a la mascota in_process
// cuando corresponde y, al aprobar, adopta la mascota y agenda la visita
// inicial como una sola unidad lógica. target igual al estado actual (o
// vacío) es un no-op que aun así permite anexar una nota.
//
// En error devuelve el estado autoritativo actual de la solicitud cuando pudo
// leerlo, para que el caller decida reintentar o corregir.
func (s *Service) Transition(ctx context.Context, id string, target Status, note *NoteInput) (AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AdoptionRequest{}, ErrInvalidInput
	}

	r, err := s.reqs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AdoptionRequest{}, err
		}
		return AdoptionRequest{}, err
	}

	now := s.now()

	// No-op: mismo estado (o sin target). Solo nota, sin evento ni efectos.
	if target == "" || target == r.Status {
		if note == nil {
			return r, nil
		}
		prev := r
		appendNote(&r, *note, now)
		r.UpdatedAt = now
		if err := s.reqs.Update(ctx, r); err != nil {
			return s.authoritative(ctx, r.ID, prev), err
		}
		r.Version++
		return r, nil
	}

	if err := CanTransition(r.Status, target); err != nil {
		return r, err
	}

	p, err := s.pets.GetByID(ctx, r.PetID)
	if err != nil {
		if errors.Is(err, pets.ErrNotFound) {
			return r, fmt.Errorf("%w: pet %s", ErrNotFound, r.PetID)
		}
		return r, err
	}

	from := r.Status
	prev := r
	r.Status = target
	stamp(&r, target, now)
	if note != nil {
		appendNote(&r, *note, now)
	}
	r.UpdatedAt = now

	switch {
	case target == StatusApproved:
		if p.Status == pets.StatusAdopted {
			return prev, fmt.Errorf("%w: pet already adopted", ErrIllegalTransition)
		}
		if err := s.applyApproval(ctx, p, r, now); err != nil {
			return s.authoritative(ctx, r.ID, prev), err
		}
		r.Version++
	case movesPetInProcess(target) && p.Status == pets.StatusAvailable:
		p.Status = pets.StatusInProcess
		p.UpdatedAt = now
		// Orden fijo: mascota primero, solicitud después.
		if err := s.pets.Update(ctx, p); err != nil {
			return prev, err
		}
		if err := s.reqs.Update(ctx, r); err != nil {
			// La mascota quedó in_process con la solicitud sin avanzar.
			// Estado benigno pero queda registrado.
			s.warn("request update failed after pet moved in_process", map[string]any{
				"request_id": r.ID,
				"pet_id":     p.ID,
			})
			return s.authoritative(ctx, r.ID, prev), err
		}
		r.Version++
	default:
		if err := s.reqs.Update(ctx, r); err != nil {
			return s.authoritative(ctx, r.ID, prev), err
		}
		r.Version++
	}

	s.emit(ctx, notify.TransitionEvent{
		RequestID: r.ID,
		PetID:     r.PetID,
		From:      string(from),
		To:        string(target),
		At:        now,
	})

	return r, nil
}

// applyApproval ejecuta los tres writes de una aprobación. Si el store sabe
// de transacciones los aplica como unidad; si no, en orden fijo (mascota,
// solicitud, seguimiento) registrando cualquier aplicación parcial.
func (s *Service) applyApproval(ctx context.Context, p pets.Pet, r AdoptionRequest, now time.Time) error {
	adoptionAt := now
	if r.AdoptionAt != nil {
		adoptionAt = *r.AdoptionAt
	}

	p.Status = pets.StatusAdopted
	p.AdoptionDate = &adoptionAt
	p.AdopterID = r.ApplicantID
	p.AdopterName = r.ApplicantName
	p.UpdatedAt = now

	fu := followups.NewInitial(p.ID, r.ID, adoptionAt)

	if tx, ok := s.reqs.(TxApplier); ok {
		return tx.ApplyApproval(ctx, p, r, fu)
	}

	if err := s.pets.Update(ctx, p); err != nil {
		return err
	}
	if err := s.reqs.Update(ctx, r); err != nil {
		s.warn("partial approval: pet adopted but request not approved", map[string]any{
			"request_id": r.ID,
			"pet_id":     p.ID,
		})
		return fmt.Errorf("%w: %v", ErrPartialApply, err)
	}
	if err := s.fus.Create(ctx, fu); err != nil {
		s.warn("partial approval: initial follow-up not created", map[string]any{
			"request_id":   r.ID,
			"pet_id":       p.ID,
			"follow_up_id": fu.ID,
		})
		return fmt.Errorf("%w: %v", ErrPartialApply, err)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AdoptionRequest{}, ErrInvalidInput
	}
	return s.reqs.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]AdoptionRequest, error) {
	return s.reqs.List(ctx, f)
}

// authoritative relee la solicitud para acompañar un error con lo que el
// store realmente tiene, no con la copia local ya mutada. Si la relectura
// falla devuelve prev, que refleja la última lectura consistente.
func (s *Service) authoritative(ctx context.Context, id string, prev AdoptionRequest) AdoptionRequest {
	cur, err := s.reqs.GetByID(ctx, id)
	if err != nil {
		return prev
	}
	return cur
}

// emit entrega el evento al notifier best-effort: un fallo jamás revierte
// el cambio de estado ya aplicado.
func (s *Service) emit(ctx context.Context, ev notify.TransitionEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.warn("notify failed", map[string]any{
			"request_id": ev.RequestID,
			"from":       ev.From,
			"to":         ev.To,
			"error":      err.Error(),
		})
	}
}

func (s *Service) warn(msg string, fields map[string]any) {
	if s.log == nil {
		return
	}
	s.log.Warn(msg, fields)
}

func appendNote(r *AdoptionRequest, in NoteInput, now time.Time) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = "admin"
	}
	r.Notes = append(r.Notes, Note{
		Author:  author,
		At:      now,
		Content: content,
	})
}

func stamp(r *AdoptionRequest, to Status, now time.Time) {
	switch to {
	case StatusReview:
		if r.ReviewAt == nil {
			r.ReviewAt = &now
		}
	case StatusInterview:
		if r.InterviewAt == nil {
			r.InterviewAt = &now
		}
	case StatusTrial:
		if r.TrialAt == nil {
			r.TrialAt = &now
		}
	case StatusApproved:
		if r.AdoptionAt == nil {
			r.AdoptionAt = &now
		}
	}
}
