// Package metrics expone contadores Prometheus del motor de adopciones.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adoption_request_transitions_total",
		Help: "Transiciones de solicitudes de adopción aplicadas, por estado origen y destino.",
	}, []string{"from", "to"})

	followUpsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "follow_ups_completed_total",
		Help: "Seguimientos post-adopción completados.",
	})
)

// TransitionApplied registra una transición ya confirmada en el store.
func TransitionApplied(from, to string) {
	transitionsTotal.WithLabelValues(from, to).Inc()
}

// FollowUpCompleted registra una visita de seguimiento completada.
func FollowUpCompleted() {
	followUpsCompletedTotal.Inc()
}

// Handler sirve /metrics en formato Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
