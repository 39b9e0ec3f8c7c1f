package users

import (
	"context"

	"pet-adoption-market/internal/storage"
)

// Filter narrows user lookups. Zero values mean "no restriction".
type Filter struct {
	Email   string // exact match, lookup is case-insensitive
	IsAdmin *bool
	Search  string // substring over name and email
}

// Patch lists the fields a profile update may touch. Nil means leave
// the stored value alone.
type Patch struct {
	Name           *string
	Phone          *string
	CredentialHash *string
	AverageRating  *float64
	TotalReviews   *int
}

// Repository is implemented identically by the postgres and in-memory
// adapters. Create assigns the id and timestamps; the id format is
// adapter-specific.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	FindOne(ctx context.Context, f Filter) (User, error)
	List(ctx context.Context, f Filter, page storage.Page) ([]User, int, error)
	Update(ctx context.Context, id string, p Patch) (User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int, error)
}
