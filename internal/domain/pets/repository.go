package pets

import (
	"context"

	"pet-adoption-market/internal/storage"
)

// Filter narrows listing queries. Zero values mean "no restriction".
// Both adapters interpret every field identically; only the execution
// strategy differs (native query vs linear scan).
type Filter struct {
	Status  Status
	Type    Type
	Breed   string // case-insensitive substring
	Size    Size
	Gender  Gender
	MinAge  *int
	MaxAge  *int
	OwnerID string

	// WishlistedBy restricts to pets wishlisted by the given user.
	WishlistedBy string

	// Search is free-text relevance over name, breed and description.
	Search string
}

// Patch lists every field a listing update may touch. Nil means the
// stored value is untouched.
type Patch struct {
	Name        *string
	Type        *Type
	Breed       *string
	Age         *int
	AgeUnit     *AgeUnit
	Gender      *Gender
	Size        *Size
	Color       *string
	Description *string

	Images      *[]string
	Health      *HealthStatus
	Temperament *[]string
	GoodWith    *GoodWith
	Location    *Location

	Status      *Status
	AdoptionFee *float64

	Views        *int
	WishlistedBy *[]string
}

// Repository is implemented identically by both storage adapters.
// Listing order is always newest-first so pagination stays stable
// within a single backend.
type Repository interface {
	Create(ctx context.Context, p Pet) (Pet, error)
	GetByID(ctx context.Context, id string) (Pet, error)

	// GetDetail expands the owner reference into an OwnerSummary
	// projection. A missing owner yields a nil Owner, not an error.
	GetDetail(ctx context.Context, id string) (Detail, error)

	FindOne(ctx context.Context, f Filter) (Pet, error)
	List(ctx context.Context, f Filter, page storage.Page) ([]Pet, int, error)
	Update(ctx context.Context, id string, p Patch) (Pet, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int, error)
}
