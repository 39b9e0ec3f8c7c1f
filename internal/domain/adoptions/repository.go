package adoptions

import (
	"context"
	"time"

	"pet-adoption-market/internal/storage"
)

type Filter struct {
	UserID string
	PetID  string
	Status Status

	// Statuses is set-membership: match any of the listed states.
	Statuses []Status
}

type Patch struct {
	Status     *Status
	AdminNotes *string
	ReviewedBy *string
	ReviewedAt *time.Time
	Pickup     *PickupOptions
}

type Repository interface {
	Create(ctx context.Context, a Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)
	FindOne(ctx context.Context, f Filter) (Application, error)
	List(ctx context.Context, f Filter, page storage.Page) ([]Application, int, error)
	Update(ctx context.Context, id string, p Patch) (Application, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int, error)
}
