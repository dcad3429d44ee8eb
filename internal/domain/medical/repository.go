package medical

import "context"

type Repository interface {
	Create(ctx context.Context, rec MedicalRecord) error

	GetByID(ctx context.Context, id string) (MedicalRecord, error)

	ListByPet(ctx context.Context, petID string, f ListFilter) ([]MedicalRecord, error)
}

type ListFilter struct {
	Kinds []Kind
	Limit int
}
