// Package reports computa las métricas del tablero municipal. Solo lecturas:
// recorre los registros al momento de la consulta y deriva estados con el
// paquete status, nunca guarda resultados.
package reports

import (
	"context"
	"time"

	"adoption-center/internal/domain/adoptions"
	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
	"adoption-center/internal/domain/status"
)

// DefaultWindow es la ventana de lookback para la latencia de adopción
// cuando el caller no especifica una.
const DefaultWindow = 90 * 24 * time.Hour

// Dashboard agrupa las métricas del tablero. Las claves JSON están en
// español porque así las consume el tablero municipal.
type Dashboard struct {
	Perritos     PetMetrics      `json:"perritos"`
	Solicitudes  RequestMetrics  `json:"solicitudes"`
	Seguimientos FollowUpMetrics `json:"seguimientos"`
	Salud        HealthMetrics   `json:"salud"`
}

type PetMetrics struct {
	Total       int            `json:"total"`
	Disponibles int            `json:"disponibles"`
	EnProceso   int            `json:"en_proceso"`
	Adoptados   int            `json:"adoptados"`
	PorIngreso  map[string]int `json:"por_ingreso"`
}

type RequestMetrics struct {
	Total      int `json:"total"`
	Nuevas     int `json:"nuevas"`
	EnRevision int `json:"en_revision"`
	Entrevista int `json:"entrevista"`
	Prueba     int `json:"prueba"`
	Aprobadas  int `json:"aprobadas"`
	Rechazadas int `json:"rechazadas"`

	// TasaAprobacion = aprobadas / (aprobadas + rechazadas); 0 si el
	// denominador es 0 (nunca NaN).
	TasaAprobacion float64 `json:"tasa_aprobacion"`

	// DiasPromedioAdopcion promedia adoption_at − created_at sobre las
	// solicitudes aprobadas dentro de la ventana. 0 cuando no hay datos;
	// TieneDatosLatencia distingue "0 días" de "sin datos".
	DiasPromedioAdopcion float64 `json:"dias_promedio_adopcion"`
	TieneDatosLatencia   bool    `json:"tiene_datos_latencia"`
}

type FollowUpMetrics struct {
	Pendientes  int `json:"pendientes"`
	Proximos    int `json:"proximos"`
	Vencidos    int `json:"vencidos"`
	Completados int `json:"completados"`

	// ProblemasDetectados cuenta visitas completadas con condición fair o
	// concerning.
	ProblemasDetectados int `json:"problemas_detectados"`
}

type HealthMetrics struct {
	// Backlogs sobre mascotas activas (available o in_process).
	SinVacunar      int `json:"sin_vacunar"`
	SinEsterilizar  int `json:"sin_esterilizar"`
	SinDesparasitar int `json:"sin_desparasitar"`
}

type Service struct {
	pets pets.Repository
	reqs adoptions.Repository
	fus  followups.Repository
	now  func() time.Time
}

func NewService(petRepo pets.Repository, reqRepo adoptions.Repository, fuRepo followups.Repository) *Service {
	return &Service{
		pets: petRepo,
		reqs: reqRepo,
		fus:  fuRepo,
		now:  time.Now,
	}
}

// Dashboard computa todas las métricas de una pasada. Tolera conjuntos
// vacíos: devuelve estructuras en cero, jamás falla por falta de datos.
func (s *Service) Dashboard(ctx context.Context, window time.Duration) (Dashboard, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	now := s.now()

	allPets, err := s.pets.List(ctx, pets.ListFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	allReqs, err := s.reqs.List(ctx, adoptions.ListFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	allFus, err := s.fus.List(ctx, followups.ListFilter{})
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Perritos: PetMetrics{PorIngreso: map[string]int{}},
	}

	for _, p := range allPets {
		d.Perritos.Total++
		switch p.Status {
		case pets.StatusAvailable:
			d.Perritos.Disponibles++
		case pets.StatusInProcess:
			d.Perritos.EnProceso++
		case pets.StatusAdopted:
			d.Perritos.Adoptados++
		}
		d.Perritos.PorIngreso[string(p.IntakeType)]++

		if p.Active() {
			if !p.Vaccinated {
				d.Salud.SinVacunar++
			}
			if !p.Sterilized {
				d.Salud.SinEsterilizar++
			}
			if !p.Dewormed {
				d.Salud.SinDesparasitar++
			}
		}
	}

	var latencySum time.Duration
	var latencyCount int
	cutoff := now.Add(-window)

	for _, r := range allReqs {
		d.Solicitudes.Total++
		switch r.Status {
		case adoptions.StatusNew:
			d.Solicitudes.Nuevas++
		case adoptions.StatusReview:
			d.Solicitudes.EnRevision++
		case adoptions.StatusInterview:
			d.Solicitudes.Entrevista++
		case adoptions.StatusTrial:
			d.Solicitudes.Prueba++
		case adoptions.StatusApproved:
			d.Solicitudes.Aprobadas++
		case adoptions.StatusRejected:
			d.Solicitudes.Rechazadas++
		}

		if r.Status == adoptions.StatusApproved && r.AdoptionAt != nil && !r.AdoptionAt.Before(cutoff) {
			latencySum += r.AdoptionAt.Sub(r.CreatedAt)
			latencyCount++
		}
	}

	if closed := d.Solicitudes.Aprobadas + d.Solicitudes.Rechazadas; closed > 0 {
		d.Solicitudes.TasaAprobacion = float64(d.Solicitudes.Aprobadas) / float64(closed)
	}
	if latencyCount > 0 {
		d.Solicitudes.DiasPromedioAdopcion = latencySum.Hours() / 24 / float64(latencyCount)
		d.Solicitudes.TieneDatosLatencia = true
	}

	for _, f := range allFus {
		switch status.ForFollowUp(f.Scheduled, f.Completed, now) {
		case status.FollowUpPending:
			d.Seguimientos.Pendientes++
		case status.FollowUpDueSoon:
			d.Seguimientos.Proximos++
		case status.FollowUpOverdue:
			d.Seguimientos.Vencidos++
		case status.FollowUpCompleted:
			d.Seguimientos.Completados++
		}
		if f.HasIssue() {
			d.Seguimientos.ProblemasDetectados++
		}
	}

	return d, nil
}
