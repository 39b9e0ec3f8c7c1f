package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-market/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

// Actor identifies who is performing a mutation.
type Actor struct {
	UserID string
	Admin  bool
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name        string
	Type        string
	Breed       string
	Age         int
	AgeUnit     string
	Gender      string
	Size        string
	Color       string
	Description string
	Images      []string
	Health      HealthStatus
	Temperament []string
	GoodWith    GoodWith
	Location    Location
	AdoptionFee float64
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Pet, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Pet{}, ErrInvalidInput
	}

	name := strings.TrimSpace(in.Name)
	breed := strings.TrimSpace(in.Breed)
	desc := strings.TrimSpace(in.Description)
	if name == "" || breed == "" || desc == "" {
		return Pet{}, ErrInvalidInput
	}
	if !ValidType(Type(in.Type)) || !ValidGender(Gender(in.Gender)) || !ValidSize(Size(in.Size)) {
		return Pet{}, ErrInvalidInput
	}
	if in.Age < 0 || in.AdoptionFee < 0 {
		return Pet{}, ErrInvalidInput
	}

	unit := AgeUnit(in.AgeUnit)
	if unit == "" {
		unit = AgeMonths
	}
	if unit != AgeMonths && unit != AgeYears {
		return Pet{}, ErrInvalidInput
	}

	p := Pet{
		OwnerID:     ownerID,
		Name:        name,
		Type:        Type(in.Type),
		Breed:       breed,
		Age:         in.Age,
		AgeUnit:     unit,
		Gender:      Gender(in.Gender),
		Size:        Size(in.Size),
		Color:       strings.TrimSpace(in.Color),
		Description: desc,
		Images:      in.Images,
		Health:      in.Health,
		Temperament: in.Temperament,
		GoodWith:    in.GoodWith,
		Location:    in.Location,
		Status:      StatusAvailable,
		AdoptionFee: in.AdoptionFee,
	}

	return s.repo.Create(ctx, p)
}

// Get returns the listing with its owner expanded and bumps the view
// counter. The bump is best-effort; a failed increment never hides
// the listing.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	views := d.Views + 1
	if updated, err := s.repo.Update(ctx, id, Patch{Views: &views}); err == nil {
		d.Views = updated.Views
	}

	return d, nil
}

type ListResult struct {
	Pets     []Pet
	PageInfo storage.PageInfo
}

func (s *Service) List(ctx context.Context, f Filter, page storage.Page) (ListResult, error) {
	page = page.Normalize()

	items, total, err := s.repo.List(ctx, f, page)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Pets:     items,
		PageInfo: storage.NewPageInfo(page, total),
	}, nil
}

type UpdateInput struct {
	Name        *string
	Breed       *string
	Age         *int
	AgeUnit     *string
	Gender      *string
	Size        *string
	Color       *string
	Description *string
	Images      *[]string
	Health      *HealthStatus
	Temperament *[]string
	GoodWith    *GoodWith
	Location    *Location
	AdoptionFee *float64
}

func (s *Service) Update(ctx context.Context, actor Actor, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != actor.UserID && !actor.Admin {
		return Pet{}, ErrForbidden
	}

	patch := Patch{
		Name:        in.Name,
		Breed:       in.Breed,
		Age:         in.Age,
		Color:       in.Color,
		Description: in.Description,
		Images:      in.Images,
		Health:      in.Health,
		Temperament: in.Temperament,
		GoodWith:    in.GoodWith,
		Location:    in.Location,
		AdoptionFee: in.AdoptionFee,
	}

	if in.Age != nil && *in.Age < 0 {
		return Pet{}, ErrInvalidInput
	}
	if in.AdoptionFee != nil && *in.AdoptionFee < 0 {
		return Pet{}, ErrInvalidInput
	}
	if in.AgeUnit != nil {
		u := AgeUnit(*in.AgeUnit)
		if u != AgeMonths && u != AgeYears {
			return Pet{}, ErrInvalidInput
		}
		patch.AgeUnit = &u
	}
	if in.Gender != nil {
		g := Gender(*in.Gender)
		if !ValidGender(g) {
			return Pet{}, ErrInvalidInput
		}
		patch.Gender = &g
	}
	if in.Size != nil {
		sz := Size(*in.Size)
		if !ValidSize(sz) {
			return Pet{}, ErrInvalidInput
		}
		patch.Size = &sz
	}

	return s.repo.Update(ctx, id, patch)
}

// UpdateStatus is the only way a listing changes adoption state.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id string, status Status) (Pet, error) {
	if !ValidStatus(status) {
		return Pet{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != actor.UserID && !actor.Admin {
		return Pet{}, ErrForbidden
	}

	return s.repo.Update(ctx, id, Patch{Status: &status})
}

func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != actor.UserID && !actor.Admin {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// ToggleWishlist adds the user to the wishlist set, or removes them if
// already present. Returns the updated pet and the resulting
// membership.
func (s *Service) ToggleWishlist(ctx context.Context, userID, id string) (Pet, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Pet{}, false, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, false, err
	}

	set := make([]string, 0, len(p.WishlistedBy)+1)
	wishlisted := false
	for _, uid := range p.WishlistedBy {
		if uid == userID {
			wishlisted = true
			continue
		}
		set = append(set, uid)
	}
	if !wishlisted {
		set = append(set, userID)
	}

	updated, err := s.repo.Update(ctx, id, Patch{WishlistedBy: &set})
	if err != nil {
		return Pet{}, false, err
	}
	return updated, !wishlisted, nil
}

// Wishlist lists the pets the user has wishlisted.
func (s *Service) Wishlist(ctx context.Context, userID string, page storage.Page) (ListResult, error) {
	return s.List(ctx, Filter{WishlistedBy: userID}, page)
}
