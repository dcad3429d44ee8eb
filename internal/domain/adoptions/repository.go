package adoptions

import (
	"context"

	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
)

type Repository interface {
	Create(ctx context.Context, r AdoptionRequest) error

	GetByID(ctx context.Context, id string) (AdoptionRequest, error)

	// Update aplica compare-and-set sobre r.Version: si la versión almacenada
	// no coincide devuelve ErrConflict y no escribe nada. Así dos transiciones
	// concurrentes sobre la misma solicitud nunca se pisan en silencio.
	Update(ctx context.Context, r AdoptionRequest) error

	List(ctx context.Context, f ListFilter) ([]AdoptionRequest, error)
}

type ListFilter struct {
	PetID    string
	Statuses []Status
	Limit    int
}

// TxApplier lo implementan los stores que pueden aplicar los tres writes de
// una aprobación (mascota, solicitud, seguimiento inicial) como una sola
// transacción. Cuando el store no lo soporta, el servicio aplica en orden
// fijo y registra la inconsistencia si falla a mitad de camino.
type TxApplier interface {
	ApplyApproval(ctx context.Context, p pets.Pet, r AdoptionRequest, f followups.FollowUp) error
}
