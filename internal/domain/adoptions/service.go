package adoptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrForbidden            = errors.New("forbidden")
	ErrBadState             = errors.New("invalid state transition")
	ErrDuplicateApplication = errors.New("active application already exists for this pet")
)

// Actor identifies who is performing an operation.
type Actor struct {
	UserID string
	Admin  bool
}

type Service struct {
	repo  Repository
	pets  pets.Repository
	codes discounts.Repository
	now   func() time.Time
}

func NewService(repo Repository, petsRepo pets.Repository, codesRepo discounts.Repository) *Service {
	return &Service{
		repo:  repo,
		pets:  petsRepo,
		codes: codesRepo,
		now:   time.Now,
	}
}

type ApplyInput struct {
	PetID        string
	Pickup       PickupOptions
	Details      Details
	DiscountCode string
}

// Apply creates an adoption application. When a discount code is
// supplied and usable, the code is consumed first and released again
// if the application itself cannot be stored, so the usage counter
// and the stored fee breakdown never drift apart.
func (s *Service) Apply(ctx context.Context, userID string, in ApplyInput) (Application, error) {
	userID = strings.TrimSpace(userID)
	petID := strings.TrimSpace(in.PetID)
	if userID == "" || petID == "" {
		return Application{}, ErrInvalidInput
	}

	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return Application{}, err
	}
	if pet.OwnerID == userID {
		return Application{}, ErrInvalidInput
	}

	if _, err := s.repo.FindOne(ctx, Filter{
		UserID:   userID,
		PetID:    petID,
		Statuses: []Status{StatusPending, StatusApproved},
	}); err == nil {
		return Application{}, ErrDuplicateApplication
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Application{}, err
	}

	fee := FeeBreakdown{
		OriginalAmount: pet.AdoptionFee,
		FinalAmount:    pet.AdoptionFee,
	}

	var consumedCodeID string
	if raw := strings.TrimSpace(in.DiscountCode); raw != "" {
		code, amount, err := s.applicableDiscount(ctx, userID, pet, raw)
		if err != nil {
			return Application{}, err
		}
		if amount > 0 {
			if err := s.codes.Consume(ctx, code.ID); err != nil {
				if !errors.Is(err, discounts.ErrExhausted) && !errors.Is(err, storage.ErrNotFound) {
					return Application{}, err
				}
				// Raced to the last use; proceed without the discount.
			} else {
				consumedCodeID = code.ID
				fee.DiscountAmount = amount
				fee.FinalAmount = pet.AdoptionFee - amount
				fee.DiscountCode = code.Code
			}
		}
	}

	a := Application{
		UserID:  userID,
		PetID:   petID,
		Status:  StatusPending,
		Fee:     fee,
		Pickup:  in.Pickup,
		Details: in.Details,
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		if consumedCodeID != "" {
			// Compensating rollback keeps usedCount honest.
			_ = s.codes.Release(ctx, consumedCodeID)
		}
		return Application{}, err
	}

	return created, nil
}

// applicableDiscount resolves the code and returns the discount amount
// it would grant, zero when the code exists but does not apply. An
// unknown code is reported as such rather than silently ignored.
func (s *Service) applicableDiscount(ctx context.Context, userID string, pet pets.Pet, raw string) (discounts.Code, float64, error) {
	code, err := s.codes.GetByCode(ctx, strings.ToUpper(raw))
	if err != nil {
		return discounts.Code{}, 0, err
	}

	now := s.now()
	if !discounts.IsValid(code, now) {
		return code, 0, nil
	}

	completed, err := s.CompletedCount(ctx, userID)
	if err != nil {
		return discounts.Code{}, 0, err
	}

	ok, _ := discounts.Eligibility(code, discounts.EligibilityContext{
		UserID:                  userID,
		PriorCompletedAdoptions: completed,
		PetType:                 pet.Type,
		PetAgeGroup:             pet.AgeGroup(),
		ProposedFee:             pet.AdoptionFee,
	})
	if !ok {
		return code, 0, nil
	}

	return code, discounts.Calculate(code, pet.AdoptionFee, now), nil
}

// CompletedCount implements discounts.AdoptionHistory.
func (s *Service) CompletedCount(ctx context.Context, userID string) (int, error) {
	return s.repo.Count(ctx, Filter{UserID: userID, Status: StatusCompleted})
}

func (s *Service) Get(ctx context.Context, actor Actor, id string) (Application, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if err := s.authorize(ctx, actor, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

type ListResult struct {
	Applications []Application
	PageInfo     storage.PageInfo
}

// ListForUser returns the adopter's own applications.
func (s *Service) ListForUser(ctx context.Context, userID string, status Status, page storage.Page) (ListResult, error) {
	page = page.Normalize()

	items, total, err := s.repo.List(ctx, Filter{UserID: userID, Status: status}, page)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Applications: items,
		PageInfo:     storage.NewPageInfo(page, total),
	}, nil
}

// ListForPet returns applications for a listing; only its owner or an
// administrator may see them.
func (s *Service) ListForPet(ctx context.Context, actor Actor, petID string, page storage.Page) (ListResult, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return ListResult{}, err
	}
	if pet.OwnerID != actor.UserID && !actor.Admin {
		return ListResult{}, ErrForbidden
	}

	page = page.Normalize()
	items, total, err := s.repo.List(ctx, Filter{PetID: petID}, page)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Applications: items,
		PageInfo:     storage.NewPageInfo(page, total),
	}, nil
}

type ReviewInput struct {
	Status     Status
	AdminNotes string
}

// Review moves an application through its lifecycle and keeps the pet
// status in step: approved => pending, completed => adopted,
// rejected/cancelled => back to available.
func (s *Service) Review(ctx context.Context, actor Actor, id string, in ReviewInput) (Application, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, err
	}

	pet, err := s.pets.GetByID(ctx, a.PetID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Application{}, err
	}
	petFound := err == nil

	isApplicant := a.UserID == actor.UserID
	isOwner := petFound && pet.OwnerID == actor.UserID

	switch in.Status {
	case StatusCancelled:
		if !isApplicant && !actor.Admin {
			return Application{}, ErrForbidden
		}
	case StatusApproved, StatusRejected, StatusCompleted:
		if !isOwner && !actor.Admin {
			return Application{}, ErrForbidden
		}
	default:
		return Application{}, ErrInvalidInput
	}

	if !transitionAllowed(a.Status, in.Status) {
		return Application{}, ErrBadState
	}

	now := s.now()
	patch := Patch{Status: &in.Status}
	if in.AdminNotes != "" {
		notes := strings.TrimSpace(in.AdminNotes)
		patch.AdminNotes = &notes
	}
	if in.Status != StatusCancelled {
		patch.ReviewedBy = &actor.UserID
		patch.ReviewedAt = &now
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return Application{}, err
	}

	if petFound {
		if st, ok := petStatusFor(in.Status); ok {
			_, _ = s.pets.Update(ctx, a.PetID, pets.Patch{Status: &st})
		}
	}

	return updated, nil
}

func (s *Service) authorize(ctx context.Context, actor Actor, a Application) error {
	if actor.Admin || a.UserID == actor.UserID {
		return nil
	}
	pet, err := s.pets.GetByID(ctx, a.PetID)
	if err == nil && pet.OwnerID == actor.UserID {
		return nil
	}
	return ErrForbidden
}

func transitionAllowed(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

func petStatusFor(s Status) (pets.Status, bool) {
	switch s {
	case StatusApproved:
		return pets.StatusPending, true
	case StatusCompleted:
		return pets.StatusAdopted, true
	case StatusRejected, StatusCancelled:
		return pets.StatusAvailable, true
	}
	return "", false
}
