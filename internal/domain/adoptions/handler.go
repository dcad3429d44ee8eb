package adoptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"adoption-center/internal/domain/pets"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/adoptions", func(ar chi.Router) {
		ar.Post("/", submitHandler(svc))
		ar.Get("/", listRequestsHandler(svc))
		ar.Get("/{requestID}", getRequestHandler(svc))
		ar.Post("/{requestID}/transition", transitionHandler(svc))
	})

	// Pase de reconciliación: detecta aprobaciones aplicadas a medias.
	r.Get("/reports/consistency", consistencyHandler(svc))
}

type submitRequest struct {
	PetID            string `json:"pet_id"`
	ApplicantID      string `json:"applicant_id"`
	ApplicantName    string `json:"applicant_name"`
	ApplicantContact string `json:"applicant_contact"`
	Note             string `json:"note"`
}

type transitionRequest struct {
	Target string `json:"target"` // vacío = no-op, solo nota
	Note   string `json:"note"`
	Author string `json:"author"`
}

type noteResponse struct {
	Author  string    `json:"author"`
	At      time.Time `json:"at"`
	Content string    `json:"content"`
}

type requestResponse struct {
	ID               string         `json:"id"`
	PetID            string         `json:"pet_id"`
	ApplicantID      string         `json:"applicant_id,omitempty"`
	ApplicantName    string         `json:"applicant_name"`
	ApplicantContact string         `json:"applicant_contact,omitempty"`
	Status           string         `json:"status"`
	ReviewAt         *time.Time     `json:"review_at,omitempty"`
	InterviewAt      *time.Time     `json:"interview_at,omitempty"`
	TrialAt          *time.Time     `json:"trial_at,omitempty"`
	AdoptionAt       *time.Time     `json:"adoption_at,omitempty"`
	Notes            []noteResponse `json:"notes"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Version          int64          `json:"version"`
}

func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		created, err := svc.Submit(r.Context(), SubmitInput{
			PetID:            req.PetID,
			ApplicantID:      req.ApplicantID,
			ApplicantName:    req.ApplicantName,
			ApplicantContact: req.ApplicantContact,
			Note:             req.Note,
		})
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toRequestResponse(created))
	}
}

func transitionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var target Status
		if raw := strings.TrimSpace(req.Target); raw != "" {
			parsed, err := ParseStatus(raw)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			target = parsed
		}

		var note *NoteInput
		if strings.TrimSpace(req.Note) != "" {
			note = &NoteInput{Author: req.Author, Content: req.Note}
		}

		updated, err := svc.Transition(r.Context(), chi.URLParam(r, "requestID"), target, note)
		if err != nil {
			// El cuerpo incluye el estado autoritativo actual para que el
			// caller decida entre reintentar (conflict) o corregir (422).
			st := toRequestResponse(updated)
			writeError(w, err, &st)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponse(updated))
	}
}

func getRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := svc.GetByID(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

func listRequestsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f ListFilter
		if st := strings.TrimSpace(r.URL.Query().Get("status")); st != "" {
			parsed, err := ParseStatus(st)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.Statuses = []Status{parsed}
		}
		f.PetID = strings.TrimSpace(r.URL.Query().Get("pet_id"))

		items, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]requestResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toRequestResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func consistencyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.CheckConsistency(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func toRequestResponse(r AdoptionRequest) requestResponse {
	notes := make([]noteResponse, 0, len(r.Notes))
	for _, n := range r.Notes {
		notes = append(notes, noteResponse{Author: n.Author, At: n.At, Content: n.Content})
	}
	return requestResponse{
		ID:               r.ID,
		PetID:            r.PetID,
		ApplicantID:      r.ApplicantID,
		ApplicantName:    r.ApplicantName,
		ApplicantContact: r.ApplicantContact,
		Status:           string(r.Status),
		ReviewAt:         r.ReviewAt,
		InterviewAt:      r.InterviewAt,
		TrialAt:          r.TrialAt,
		AdoptionAt:       r.AdoptionAt,
		Notes:            notes,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Version:          r.Version,
	}
}

func statusForErr(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, pets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, pets.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrIllegalTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPartialApply):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, state *requestResponse) {
	body := map[string]any{"error": err.Error()}
	if state != nil && state.ID != "" {
		body["state"] = state
	}
	writeJSON(w, statusForErr(err), body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
