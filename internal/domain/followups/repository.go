package followups

import "context"

type Repository interface {
	Create(ctx context.Context, f FollowUp) error

	GetByID(ctx context.Context, id string) (FollowUp, error)

	// Update aplica compare-and-set sobre f.Version.
	Update(ctx context.Context, f FollowUp) error

	ListByPet(ctx context.Context, petID string) ([]FollowUp, error)

	List(ctx context.Context, f ListFilter) ([]FollowUp, error)
}

type ListFilter struct {
	Types     []Type
	Completed *bool
	Limit     int
}
