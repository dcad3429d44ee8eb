package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error

	GetByID(ctx context.Context, id string) (Pet, error)

	// Update aplica compare-and-set: p.Version debe coincidir con la versión
	// almacenada o el store devuelve ErrConflict. En éxito el store incrementa
	// la versión persistida.
	Update(ctx context.Context, p Pet) error

	List(ctx context.Context, f ListFilter) ([]Pet, error)
}

type ListFilter struct {
	Statuses    []AvailabilityStatus
	IntakeTypes []IntakeType
	Limit       int
}
