package followups

import (
	"time"

	"github.com/google/uuid"
)

// InitialDelay es cuánto después de la adopción se agenda la visita inicial.
const InitialDelay = 7 * 24 * time.Hour

// NextType devuelve el tipo del siguiente seguimiento en la cadencia:
// initial→monthly→semiannual→annual→annual (se repite indefinidamente).
// Una visita por incidencia (issue) reinicia la cadencia en monthly en vez
// de continuar donde iba. La cadencia es total: todo tipo tiene sucesor.
func NextType(t Type) Type {
	switch t {
	case TypeInitial:
		return TypeMonthly
	case TypeMonthly:
		return TypeSemiannual
	case TypeSemiannual:
		return TypeAnnual
	case TypeAnnual:
		return TypeAnnual
	case TypeIssue:
		return TypeMonthly
	default:
		// Tipo desconocido: la validación de entrada no deja llegar acá;
		// reiniciar en monthly es el mismo criterio que issue.
		return TypeMonthly
	}
}

// NewInitial construye la visita inicial que dispara una aprobación:
// type=initial, agendada a adopción + InitialDelay.
func NewInitial(petID, requestID string, approvedAt time.Time) FollowUp {
	return FollowUp{
		ID:        uuid.NewString(),
		PetID:     petID,
		RequestID: requestID,
		Type:      TypeInitial,
		Scheduled: approvedAt.Add(InitialDelay),
		Completed: false,
		CreatedAt: approvedAt,
		UpdatedAt: approvedAt,
		Version:   1,
	}
}

// successor construye el seguimiento que engendra una visita completada.
func successor(parent FollowUp, nextDue time.Time, now time.Time) FollowUp {
	return FollowUp{
		ID:            uuid.NewString(),
		PetID:         parent.PetID,
		RequestID:     parent.RequestID,
		Type:          NextType(parent.Type),
		Scheduled:     nextDue,
		Completed:     false,
		ResponsibleBy: parent.ResponsibleBy,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
}
