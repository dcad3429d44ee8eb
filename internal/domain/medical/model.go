package medical

import "time"

// Kind es el tipo de evento veterinario registrado.
type Kind string

const (
	KindVaccine      Kind = "vaccine"
	KindSurgery      Kind = "surgery"
	KindDeworming    Kind = "deworming"
	KindTreatment    Kind = "treatment"
	KindConsultation Kind = "consultation"
)

// MedicalRecord es una entrada del historial veterinario de una mascota.
// El historial es append-only: los registros no se editan ni se borran.
// NextDose solo aplica a vacunas; una vacuna con NextDose en el pasado es la
// fuente del estado derivado "vacunación vencida".
type MedicalRecord struct {
	ID    string
	PetID string

	Kind      Kind
	EventDate time.Time

	NextDose *time.Time

	// Sterilizing marca una cirugía de esterilización (solo kind=surgery).
	Sterilizing bool

	Notes string

	CreatedAt time.Time
}

func validKind(k Kind) bool {
	switch k {
	case KindVaccine, KindSurgery, KindDeworming, KindTreatment, KindConsultation:
		return true
	}
	return false
}
