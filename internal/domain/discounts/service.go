package discounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCodeTaken    = errors.New("discount code already exists")
)

// AdoptionHistory reports how many adoptions a user has completed.
// Implemented by the adoptions module; declared here to keep the
// dependency one-way.
type AdoptionHistory interface {
	CompletedCount(ctx context.Context, userID string) (int, error)
}

type Service struct {
	repo    Repository
	pets    pets.Repository
	history AdoptionHistory
	now     func() time.Time
}

func NewService(repo Repository, petsRepo pets.Repository, history AdoptionHistory) *Service {
	return &Service{
		repo:    repo,
		pets:    petsRepo,
		history: history,
		now:     time.Now,
	}
}

type CreateInput struct {
	Code        string
	Name        string
	Description string

	Type  string
	Value float64

	MinAdoptionFee float64
	MaxDiscount    *float64

	ValidFrom  time.Time
	ValidUntil time.Time

	UsageLimit *int

	ApplicablePetTypes []string
	ApplicablePetAges  []string

	FirstTimeAdoptersOnly bool
	AllowedUserIDs        []string
}

func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (Code, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return Code{}, ErrInvalidInput
	}
	if !ValidKind(Type(in.Type)) {
		return Code{}, ErrInvalidInput
	}
	if in.Value <= 0 {
		return Code{}, ErrInvalidInput
	}
	if Type(in.Type) == TypePercentage && in.Value > 100 {
		return Code{}, ErrInvalidInput
	}
	if in.MinAdoptionFee < 0 {
		return Code{}, ErrInvalidInput
	}
	if in.MaxDiscount != nil && *in.MaxDiscount <= 0 {
		return Code{}, ErrInvalidInput
	}
	if in.UsageLimit != nil && *in.UsageLimit <= 0 {
		return Code{}, ErrInvalidInput
	}
	if !in.ValidUntil.After(in.ValidFrom) {
		return Code{}, ErrInvalidInput
	}

	petTypes := make([]pets.Type, 0, len(in.ApplicablePetTypes))
	for _, raw := range in.ApplicablePetTypes {
		t := pets.Type(strings.TrimSpace(raw))
		if !pets.ValidType(t) {
			return Code{}, ErrInvalidInput
		}
		petTypes = append(petTypes, t)
	}

	petAges := make([]pets.AgeGroup, 0, len(in.ApplicablePetAges))
	for _, raw := range in.ApplicablePetAges {
		g := pets.AgeGroup(strings.TrimSpace(raw))
		switch g {
		case pets.AgePuppy, pets.AgeYoung, pets.AgeAdult, pets.AgeSenior:
			petAges = append(petAges, g)
		default:
			return Code{}, ErrInvalidInput
		}
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return Code{}, ErrCodeTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Code{}, err
	}

	c := Code{
		Code:                  code,
		Name:                  name,
		Description:           strings.TrimSpace(in.Description),
		Type:                  Type(in.Type),
		Value:                 in.Value,
		MinAdoptionFee:        in.MinAdoptionFee,
		MaxDiscount:           in.MaxDiscount,
		ValidFrom:             in.ValidFrom,
		ValidUntil:            in.ValidUntil,
		UsageLimit:            in.UsageLimit,
		IsActive:              true,
		ApplicablePetTypes:    petTypes,
		ApplicablePetAges:     petAges,
		FirstTimeAdoptersOnly: in.FirstTimeAdoptersOnly,
		AllowedUserIDs:        in.AllowedUserIDs,
		CreatedBy:             createdBy,
	}

	return s.repo.Create(ctx, c)
}

func (s *Service) GetByID(ctx context.Context, id string) (Code, error) {
	return s.repo.GetByID(ctx, id)
}

type ListResult struct {
	Codes    []Code
	PageInfo storage.PageInfo
}

func (s *Service) List(ctx context.Context, f Filter, page storage.Page) (ListResult, error) {
	page = page.Normalize()

	items, total, err := s.repo.List(ctx, f, page)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Codes:    items,
		PageInfo: storage.NewPageInfo(page, total),
	}, nil
}

// ActiveCodes is the public listing: active codes currently inside
// their validity window.
func (s *Service) ActiveCodes(ctx context.Context) ([]Code, error) {
	active := true
	now := s.now()

	items, _, err := s.repo.List(ctx, Filter{IsActive: &active, ActiveAt: &now}, storage.Page{Number: 1, Size: 100})
	if err != nil {
		return nil, err
	}
	return items, nil
}

type UpdateInput struct {
	Name        *string
	Description *string

	Value          *float64
	MinAdoptionFee *float64
	MaxDiscount    *float64

	ValidFrom  *time.Time
	ValidUntil *time.Time

	UsageLimit *int
	IsActive   *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Code, error) {
	if in.Value != nil && *in.Value <= 0 {
		return Code{}, ErrInvalidInput
	}
	if in.MinAdoptionFee != nil && *in.MinAdoptionFee < 0 {
		return Code{}, ErrInvalidInput
	}
	if in.UsageLimit != nil && *in.UsageLimit <= 0 {
		return Code{}, ErrInvalidInput
	}

	return s.repo.Update(ctx, id, Patch{
		Name:           in.Name,
		Description:    in.Description,
		Value:          in.Value,
		MinAdoptionFee: in.MinAdoptionFee,
		MaxDiscount:    in.MaxDiscount,
		ValidFrom:      in.ValidFrom,
		ValidUntil:     in.ValidUntil,
		UsageLimit:     in.UsageLimit,
		IsActive:       in.IsActive,
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

type Calculation struct {
	OriginalAmount float64
	DiscountAmount float64
	FinalAmount    float64
}

type Validation struct {
	Valid       bool
	Reason      string
	Code        Code
	Calculation Calculation
}

// Validate checks a code against the adopter and an optional pet, and
// returns the fee calculation. It never consumes the code.
func (s *Service) Validate(ctx context.Context, userID, rawCode, petID string, fee float64) (Validation, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return Validation{}, ErrInvalidInput
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Validation{}, err
	}

	now := s.now()
	if !IsValid(c, now) {
		return Validation{Valid: false, Reason: "discount code is not valid", Code: c}, nil
	}

	ec := EligibilityContext{
		UserID:      userID,
		ProposedFee: fee,
	}

	if s.history != nil {
		completed, err := s.history.CompletedCount(ctx, userID)
		if err != nil {
			return Validation{}, err
		}
		ec.PriorCompletedAdoptions = completed
	}

	if strings.TrimSpace(petID) != "" {
		p, err := s.pets.GetByID(ctx, petID)
		if err != nil {
			return Validation{}, err
		}
		ec.PetType = p.Type
		ec.PetAgeGroup = p.AgeGroup()
	}

	if ok, reason := Eligibility(c, ec); !ok {
		return Validation{Valid: false, Reason: reason, Code: c}, nil
	}

	discount := Calculate(c, fee, now)
	return Validation{
		Valid: true,
		Code:  c,
		Calculation: Calculation{
			OriginalAmount: fee,
			DiscountAmount: discount,
			FinalAmount:    fee - discount,
		},
	}, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}
