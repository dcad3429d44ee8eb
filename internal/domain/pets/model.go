package pets

import "time"

// Species define las especies soportadas.
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

// Sex define el sexo de la mascota.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// AvailabilityStatus es el estado de disponibilidad del animal dentro del refugio.
// Las transiciones las maneja el motor de adopciones, nunca se setean a mano:
// available → in_process cuando una solicitud avanza, → adopted solo al aprobar,
// y de vuelta a available solo por override administrativo.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusInProcess AvailabilityStatus = "in_process"
	StatusAdopted   AvailabilityStatus = "adopted"
)

// IntakeType define cómo llegó el animal al refugio.
type IntakeType string

const (
	IntakeRescue    IntakeType = "rescue"
	IntakeSurrender IntakeType = "surrender"
	IntakeTransfer  IntakeType = "transfer"
	IntakeOther     IntakeType = "other"
)

// Pet representa un animal registrado desde su ingreso hasta su adopción.
// Invariante: AdoptionDate seteada ⇔ Status == adopted (y adopter presente).
// Las mascotas nunca se borran, solo cambian de estado.
type Pet struct {
	ID string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate *time.Time

	IntakeType IntakeType
	IntakeDate time.Time

	Status AvailabilityStatus

	Vaccinated bool
	Sterilized bool
	Dewormed   bool

	AdoptionDate *time.Time
	AdopterID    string
	AdopterName  string

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Version para concurrencia optimista: el store rechaza un update
	// cuyo Version no coincide con el almacenado.
	Version int64
}

// Active reporta si la mascota sigue bajo cuidado del refugio
// (cuenta para backlogs de vacunación/esterilización).
func (p Pet) Active() bool {
	return p.Status == StatusAvailable || p.Status == StatusInProcess
}

func validStatus(s AvailabilityStatus) bool {
	switch s {
	case StatusAvailable, StatusInProcess, StatusAdopted:
		return true
	}
	return false
}

func validIntake(t IntakeType) bool {
	switch t {
	case IntakeRescue, IntakeSurrender, IntakeTransfer, IntakeOther:
		return true
	}
	return false
}
