package reports

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/dashboard", dashboardHandler(svc))
}

func dashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := time.Duration(0)
		if raw := r.URL.Query().Get("window_days"); raw != "" {
			days, err := strconv.Atoi(raw)
			if err != nil || days <= 0 {
				http.Error(w, "window_days must be a positive integer", http.StatusBadRequest)
				return
			}
			window = time.Duration(days) * 24 * time.Hour
		}

		d, err := svc.Dashboard(r.Context(), window)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(d)
	}
}
