package medical

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"adoption-center/internal/domain/status"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/medical", func(mr chi.Router) {
		mr.Post("/", logRecordHandler(svc))
		mr.Get("/", listRecordsHandler(svc))
	})
}

type logRecordRequest struct {
	Kind        string `json:"kind"`
	EventDate   string `json:"event_date"` // YYYY-MM-DD
	NextDose    string `json:"next_dose"`  // YYYY-MM-DD, solo vacunas
	Sterilizing bool   `json:"sterilizing"`
	Notes       string `json:"notes"`
}

type recordResponse struct {
	ID          string     `json:"id"`
	PetID       string     `json:"pet_id"`
	Kind        string     `json:"kind"`
	EventDate   time.Time  `json:"event_date"`
	NextDose    *time.Time `json:"next_dose,omitempty"`
	Sterilizing bool       `json:"sterilizing,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type historyResponse struct {
	// VaccinationStatus es derivado al momento de la consulta.
	VaccinationStatus string           `json:"vaccination_status"`
	Records           []recordResponse `json:"records"`
}

func logRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		eventDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.EventDate))
		if err != nil {
			http.Error(w, "event_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		var nextDose *time.Time
		if strings.TrimSpace(req.NextDose) != "" {
			t, err := time.Parse("2006-01-02", req.NextDose)
			if err != nil {
				http.Error(w, "next_dose must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			nextDose = &t
		}

		rec, err := svc.Log(r.Context(), chi.URLParam(r, "petID"), LogInput{
			Kind:        req.Kind,
			EventDate:   eventDate,
			NextDose:    nextDose,
			Sterilizing: req.Sterilizing,
			Notes:       req.Notes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func listRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")

		var f ListFilter
		if k := strings.TrimSpace(r.URL.Query().Get("kind")); k != "" {
			f.Kinds = []Kind{Kind(k)}
		}

		recs, err := svc.ListByPet(r.Context(), petID, f)
		if err != nil {
			writeError(w, err)
			return
		}

		vacc, err := svc.VaccinationStatus(r.Context(), petID)
		if err != nil {
			vacc = status.VaccinationApplied
		}

		out := historyResponse{
			VaccinationStatus: string(vacc),
			Records:           make([]recordResponse, 0, len(recs)),
		}
		for _, rec := range recs {
			out.Records = append(out.Records, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toRecordResponse(rec MedicalRecord) recordResponse {
	return recordResponse{
		ID:          rec.ID,
		PetID:       rec.PetID,
		Kind:        string(rec.Kind),
		EventDate:   rec.EventDate,
		NextDose:    rec.NextDose,
		Sterilizing: rec.Sterilizing,
		Notes:       rec.Notes,
		CreatedAt:   rec.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
