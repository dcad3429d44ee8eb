package followups

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"adoption-center/internal/domain/status"
	"adoption-center/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/followups", func(fr chi.Router) {
		fr.Post("/", scheduleHandler(svc))
		fr.Get("/{followUpID}", getFollowUpHandler(svc))
		fr.Post("/{followUpID}/complete", completeHandler(svc))
	})

	r.Get("/pets/{petID}/followups", listByPetHandler(svc))
}

type scheduleRequest struct {
	PetID         string `json:"pet_id"`
	RequestID     string `json:"request_id"`
	Type          string `json:"type"`
	Scheduled     string `json:"scheduled"` // YYYY-MM-DD
	ResponsibleBy string `json:"responsible_by"`
}

type completeRequest struct {
	Condition     string `json:"condition"`
	Observations  string `json:"observations"`
	ResponsibleBy string `json:"responsible_by"`
	SpawnNext     bool   `json:"spawn_next"`
	NextDue       string `json:"next_due"` // YYYY-MM-DD, obligatorio si spawn_next
}

type followUpResponse struct {
	ID            string     `json:"id"`
	PetID         string     `json:"pet_id"`
	RequestID     string     `json:"request_id,omitempty"`
	Type          string     `json:"type"`
	Scheduled     time.Time  `json:"scheduled"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Condition     string     `json:"condition,omitempty"`
	Observations  string     `json:"observations,omitempty"`
	ResponsibleBy string     `json:"responsible_by,omitempty"`
	// DerivedStatus se calcula al momento de la lectura, nunca se guarda.
	DerivedStatus string    `json:"derived_status"`
	CreatedAt     time.Time `json:"created_at"`
	Version       int64     `json:"version"`
}

type completeResponse struct {
	FollowUp followUpResponse  `json:"follow_up"`
	Next     *followUpResponse `json:"next,omitempty"`
}

func scheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sched, err := time.Parse("2006-01-02", strings.TrimSpace(req.Scheduled))
		if err != nil {
			http.Error(w, "scheduled must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		f, err := svc.Schedule(r.Context(), ScheduleInput{
			PetID:         req.PetID,
			RequestID:     req.RequestID,
			Type:          req.Type,
			Scheduled:     sched,
			ResponsibleBy: req.ResponsibleBy,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toFollowUpResponse(f, time.Now()))
	}
}

func completeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var nextDue *time.Time
		if strings.TrimSpace(req.NextDue) != "" {
			t, err := time.Parse("2006-01-02", req.NextDue)
			if err != nil {
				http.Error(w, "next_due must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			nextDue = &t
		}

		f, next, err := svc.Complete(r.Context(), chi.URLParam(r, "followUpID"), CompleteInput{
			Condition:     req.Condition,
			Observations:  req.Observations,
			ResponsibleBy: req.ResponsibleBy,
			SpawnNext:     req.SpawnNext,
			NextDue:       nextDue,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		metrics.FollowUpCompleted()

		now := time.Now()
		resp := completeResponse{FollowUp: toFollowUpResponse(f, now)}
		if next != nil {
			n := toFollowUpResponse(*next, now)
			resp.Next = &n
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getFollowUpHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := svc.GetByID(r.Context(), chi.URLParam(r, "followUpID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFollowUpResponse(f, time.Now()))
	}
}

func listByPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}

		now := time.Now()
		out := make([]followUpResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFollowUpResponse(f, now))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toFollowUpResponse(f FollowUp, now time.Time) followUpResponse {
	return followUpResponse{
		ID:            f.ID,
		PetID:         f.PetID,
		RequestID:     f.RequestID,
		Type:          string(f.Type),
		Scheduled:     f.Scheduled,
		Completed:     f.Completed,
		CompletedAt:   f.CompletedAt,
		Condition:     string(f.Condition),
		Observations:  f.Observations,
		ResponsibleBy: f.ResponsibleBy,
		DerivedStatus: string(status.ForFollowUp(f.Scheduled, f.Completed, now)),
		CreatedAt:     f.CreatedAt,
		Version:       f.Version,
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, ErrAlreadyCompleted):
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
