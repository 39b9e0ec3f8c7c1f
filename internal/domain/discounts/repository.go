package discounts

import (
	"context"
	"errors"
	"time"

	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

// ErrExhausted is returned by Consume when the usage limit is reached.
var ErrExhausted = errors.New("usage limit reached")

type Filter struct {
	Code     string // exact match after upper-casing
	IsActive *bool

	// ActiveAt restricts to codes whose validity window contains the
	// given instant.
	ActiveAt *time.Time
}

// Patch lists the mutable fields. The code string itself is immutable
// after creation, so it has no patch field.
type Patch struct {
	Name        *string
	Description *string

	Type  *Type
	Value *float64

	MinAdoptionFee *float64
	MaxDiscount    *float64

	ValidFrom  *time.Time
	ValidUntil *time.Time

	UsageLimit *int
	IsActive   *bool

	ApplicablePetTypes *[]pets.Type
	ApplicablePetAges  *[]pets.AgeGroup

	FirstTimeAdoptersOnly *bool
	AllowedUserIDs        *[]string
}

type Stats struct {
	Total    int
	Active   int
	Expired  int
	MostUsed []Code
	Recent   []Code
}

type Repository interface {
	Create(ctx context.Context, c Code) (Code, error)
	GetByID(ctx context.Context, id string) (Code, error)
	GetByCode(ctx context.Context, code string) (Code, error)
	List(ctx context.Context, f Filter, page storage.Page) ([]Code, int, error)
	Update(ctx context.Context, id string, p Patch) (Code, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int, error)

	// Consume atomically increments UsedCount, failing with
	// ErrExhausted once the usage limit is reached. Release undoes a
	// Consume when the surrounding operation could not be committed.
	Consume(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error

	Stats(ctx context.Context) (Stats, error)
}
