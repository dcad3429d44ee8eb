package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", intakeHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))

		// Override administrativo de disponibilidad (devoluciones).
		pr.Post("/{petID}/availability", overrideAvailabilityHandler(svc))
	})
}

type intakeRequest struct {
	Name       string `json:"name"`
	Species    string `json:"species"`
	Breed      string `json:"breed"`
	Sex        string `json:"sex"`
	BirthDate  string `json:"birth_date"`  // YYYY-MM-DD opcional
	IntakeType string `json:"intake_type"` // rescue|surrender|transfer|other
	IntakeDate string `json:"intake_date"` // YYYY-MM-DD opcional
	Notes      string `json:"notes"`
}

type petResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Species      string     `json:"species"`
	Breed        string     `json:"breed"`
	Sex          string     `json:"sex"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	IntakeType   string     `json:"intake_type"`
	IntakeDate   time.Time  `json:"intake_date"`
	Status       string     `json:"status"`
	Vaccinated   bool       `json:"vaccinated"`
	Sterilized   bool       `json:"sterilized"`
	Dewormed     bool       `json:"dewormed"`
	AdoptionDate *time.Time `json:"adoption_date,omitempty"`
	AdopterID    string     `json:"adopter_id,omitempty"`
	AdopterName  string     `json:"adopter_name,omitempty"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Version      int64      `json:"version"`
}

type overrideAvailabilityRequest struct {
	Target string `json:"target"`
}

func intakeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req intakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}
		var id *time.Time
		if strings.TrimSpace(req.IntakeDate) != "" {
			t, err := time.Parse("2006-01-02", req.IntakeDate)
			if err != nil {
				http.Error(w, "intake_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			id = &t
		}

		p, err := svc.Intake(r.Context(), IntakeInput{
			Name:       req.Name,
			Species:    req.Species,
			Breed:      req.Breed,
			Sex:        req.Sex,
			BirthDate:  bd,
			IntakeType: req.IntakeType,
			IntakeDate: id,
			Notes:      req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f ListFilter
		if st := strings.TrimSpace(r.URL.Query().Get("status")); st != "" {
			f.Statuses = []AvailabilityStatus{AvailabilityStatus(st)}
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func overrideAvailabilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req overrideAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.OverrideAvailability(r.Context(), chi.URLParam(r, "petID"), AvailabilityStatus(strings.TrimSpace(req.Target)))
		if err != nil {
			// Devolvemos el estado actual junto al error cuando lo tenemos,
			// para que el caller decida si reintenta.
			if p.ID != "" {
				writeErrorWithState(w, err, toPetResponse(p))
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:           p.ID,
		Name:         p.Name,
		Species:      string(p.Species),
		Breed:        p.Breed,
		Sex:          string(p.Sex),
		BirthDate:    p.BirthDate,
		IntakeType:   string(p.IntakeType),
		IntakeDate:   p.IntakeDate,
		Status:       string(p.Status),
		Vaccinated:   p.Vaccinated,
		Sterilized:   p.Sterilized,
		Dewormed:     p.Dewormed,
		AdoptionDate: p.AdoptionDate,
		AdopterID:    p.AdopterID,
		AdopterName:  p.AdopterName,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

func statusForErr(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrIllegalTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForErr(err), map[string]any{"error": err.Error()})
}

func writeErrorWithState(w http.ResponseWriter, err error, state any) {
	writeJSON(w, statusForErr(err), map[string]any{
		"error": err.Error(),
		"state": state,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
