package adoptions

import "time"

// Note es una entrada del log de notas de la solicitud. El log es append-only:
// las notas nunca se editan ni se borran, ni siquiera en estados terminales.
type Note struct {
	Author  string
	At      time.Time
	Content string
}

// AdoptionRequest es la solicitud de un adoptante sobre una mascota concreta,
// llevada por el flujo new→review→interview→trial→approved (rejected desde
// cualquier estado no terminal).
//
// Los timestamps de etapa se setean una sola vez, al entrar por primera vez a
// la etapa, y quedan monótonamente no decrecientes en el orden del flujo.
// Una vez approved o rejected la solicitud es inmutable salvo append de notas.
type AdoptionRequest struct {
	ID    string
	PetID string

	ApplicantID      string
	ApplicantName    string
	ApplicantContact string

	Status Status

	ReviewAt    *time.Time
	InterviewAt *time.Time
	TrialAt     *time.Time
	AdoptionAt  *time.Time

	Notes []Note

	CreatedAt time.Time
	UpdatedAt time.Time

	Version int64
}

// Terminal reporta si la solicitud ya no admite transiciones.
func (r AdoptionRequest) Terminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
