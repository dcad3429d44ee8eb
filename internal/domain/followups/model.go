package followups

import "time"

// Type es el tipo de seguimiento dentro de la cadencia post-adopción.
type Type string

const (
	TypeInitial    Type = "initial"
	TypeMonthly    Type = "monthly"
	TypeSemiannual Type = "semiannual"
	TypeAnnual     Type = "annual"
	TypeIssue      Type = "issue"
)

// Condition es la observación del estado del animal al completar una visita.
type Condition string

const (
	ConditionGood       Condition = "good"
	ConditionFair       Condition = "fair"
	ConditionConcerning Condition = "concerning"
)

// FollowUp es una visita de seguimiento post-adopción.
// Se crea automáticamente al aprobar una solicitud (initial, adopción + 7 días)
// o a mano; al completarse puede engendrar exactamente un sucesor según la
// cadencia, y solo si el caller lo pide.
type FollowUp struct {
	ID    string
	PetID string

	// RequestID referencia la solicitud que originó la cadencia; puede venir
	// vacío en seguimientos creados a mano.
	RequestID string

	Type      Type
	Scheduled time.Time

	Completed   bool
	CompletedAt *time.Time

	// Condition queda vacía hasta que el seguimiento se completa.
	Condition    Condition
	Observations string

	ResponsibleBy string

	CreatedAt time.Time
	UpdatedAt time.Time

	Version int64
}

// HasIssue reporta si la observación registrada amerita atención.
func (f FollowUp) HasIssue() bool {
	return f.Condition == ConditionFair || f.Condition == ConditionConcerning
}

func validType(t Type) bool {
	switch t {
	case TypeInitial, TypeMonthly, TypeSemiannual, TypeAnnual, TypeIssue:
		return true
	}
	return false
}

func validCondition(c Condition) bool {
	switch c {
	case ConditionGood, ConditionFair, ConditionConcerning:
		return true
	}
	return false
}
