// Package status centraliza los estados derivados de fechas.
// Todo el que necesite saber si una vacuna está vencida o un
// seguimiento está pendiente pasa por aquí, nunca compara fechas
// por su cuenta.
package status

import "time"

// Horizontes de política fijos.
const (
	// VaccineUpcomingWindow: una próxima dosis dentro de esta ventana se reporta como "upcoming".
	VaccineUpcomingWindow = 15 * 24 * time.Hour

	// FollowUpDueSoonWindow: un seguimiento agendado dentro de esta ventana se reporta como "due_soon".
	FollowUpDueSoonWindow = 7 * 24 * time.Hour
)

// Vaccination es el estado derivado de vacunación según la próxima dosis registrada.
type Vaccination string

const (
	VaccinationApplied  Vaccination = "applied"
	VaccinationUpcoming Vaccination = "upcoming"
	VaccinationOverdue  Vaccination = "overdue"
)

// FollowUpState es el estado derivado de un seguimiento según su fecha agendada.
type FollowUpState string

const (
	FollowUpPending   FollowUpState = "pending"
	FollowUpDueSoon   FollowUpState = "due_soon"
	FollowUpOverdue   FollowUpState = "overdue"
	FollowUpCompleted FollowUpState = "completed"
)

// ForVaccine deriva el estado de vacunación a partir de la próxima dosis.
// nextDose nil significa que no hay dosis pendiente (applied).
// La función es pura: no muta nada y siempre devuelve lo mismo para los mismos inputs.
func ForVaccine(nextDose *time.Time, now time.Time) Vaccination {
	if nextDose == nil {
		return VaccinationApplied
	}
	if nextDose.Before(now) {
		return VaccinationOverdue
	}
	if !nextDose.After(now.Add(VaccineUpcomingWindow)) {
		return VaccinationUpcoming
	}
	return VaccinationApplied
}

// ForFollowUp deriva el estado de un seguimiento a partir de su fecha agendada.
func ForFollowUp(scheduled time.Time, completed bool, now time.Time) FollowUpState {
	if completed {
		return FollowUpCompleted
	}
	if scheduled.Before(now) {
		return FollowUpOverdue
	}
	if !scheduled.After(now.Add(FollowUpDueSoonWindow)) {
		return FollowUpDueSoon
	}
	return FollowUpPending
}
