package adoptions

import (
	"errors"
	"fmt"
)

// Status es el estado de una solicitud dentro del flujo de aprobación.
//
//	new ──► review ──► interview ──► trial ──► approved
//	 │         │            │           │
//	 └─────────┴────────────┴───────────┴───► rejected
//
// Se permite saltar etapas hacia adelante (new→approved directo es legal);
// lo único prohibido es retroceder a una etapa anterior o salir de un estado
// terminal. approved y rejected son terminales.
type Status string

const (
	StatusNew       Status = "new"
	StatusReview    Status = "review"
	StatusInterview Status = "interview"
	StatusTrial     Status = "trial"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

var (
	// ErrIllegalTransition cubre toda transición que el flujo no permite,
	// incluida la salida de estados terminales. Error de uso: no se reintenta.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrIllegalRegression es el caso específico de volver a una etapa anterior.
	ErrIllegalRegression = fmt.Errorf("%w: illegal regression", ErrIllegalTransition)
)

// stageRank ordena las etapas no terminales del flujo. rejected no tiene
// rango: se alcanza desde cualquier estado no terminal.
func stageRank(s Status) int {
	switch s {
	case StatusNew:
		return 0
	case StatusReview:
		return 1
	case StatusInterview:
		return 2
	case StatusTrial:
		return 3
	case StatusApproved:
		return 4
	default:
		return -1
	}
}

// ParseStatus valida un estado que llega por el borde HTTP.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNew, StatusReview, StatusInterview, StatusTrial, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// CanTransition decide si from→to es legal. No cubre el caso from==to,
// que el servicio trata como no-op (con append de nota permitido).
func CanTransition(from, to Status) error {
	if from == StatusApproved || from == StatusRejected {
		return fmt.Errorf("%w: %s is terminal", ErrIllegalTransition, from)
	}
	if to == StatusRejected {
		return nil
	}
	fromRank, toRank := stageRank(from), stageRank(to)
	if toRank < 0 {
		return fmt.Errorf("%w: unknown target %s", ErrIllegalTransition, to)
	}
	if toRank < fromRank {
		return fmt.Errorf("%w: %s → %s", ErrIllegalRegression, from, to)
	}
	return nil
}

// movesPetInProcess reporta si entrar a la etapa pone a la mascota en trámite.
func movesPetInProcess(to Status) bool {
	return to == StatusReview || to == StatusInterview || to == StatusTrial
}
