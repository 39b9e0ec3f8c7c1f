package adoptions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-adoption-market/internal/adapters/storage/memory"
	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

type fixture struct {
	store *memory.Store
	svc   *adoptions.Service
	pet   pets.Pet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	svc := adoptions.NewService(store.Adoptions(), store.Pets(), store.Discounts())

	pet, err := store.Pets().Create(ctx, pets.Pet{
		OwnerID:     "100",
		Name:        "Rex",
		Type:        pets.TypeDog,
		Breed:       "mixed",
		Age:         6,
		AgeUnit:     pets.AgeMonths,
		Status:      pets.StatusAvailable,
		AdoptionFee: 200,
	})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	return &fixture{store: store, svc: svc, pet: pet}
}

func (f *fixture) seedCode(t *testing.T, c discounts.Code) discounts.Code {
	t.Helper()
	if c.ValidFrom.IsZero() {
		c.ValidFrom = time.Now().Add(-time.Hour)
	}
	if c.ValidUntil.IsZero() {
		c.ValidUntil = time.Now().Add(time.Hour)
	}
	created, err := f.store.Discounts().Create(context.Background(), c)
	if err != nil {
		t.Fatalf("seed code: %v", err)
	}
	return created
}

func TestApply_CreatesPendingApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if a.Status != adoptions.StatusPending {
		t.Fatalf("status = %s, want pending", a.Status)
	}
	if a.Fee.OriginalAmount != 200 || a.Fee.FinalAmount != 200 || a.Fee.DiscountAmount != 0 {
		t.Fatalf("unexpected fee breakdown: %+v", a.Fee)
	}
}

func TestApply_OwnerCannotAdoptOwnPet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Apply(ctx, "100", adoptions.ApplyInput{PetID: f.pet.ID})
	if !errors.Is(err, adoptions.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestApply_RejectsDuplicateActiveApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID}); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	_, err := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID})
	if !errors.Is(err, adoptions.ErrDuplicateApplication) {
		t.Fatalf("got %v, want ErrDuplicateApplication", err)
	}

	// Another adopter can still apply.
	if _, err := f.svc.Apply(ctx, "300", adoptions.ApplyInput{PetID: f.pet.ID}); err != nil {
		t.Fatalf("second adopter: %v", err)
	}
}

func TestApply_ConsumesDiscountCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	max := 50.0
	code := f.seedCode(t, discounts.Code{
		Code:           "SUMMER25",
		Name:           "Summer",
		Type:           discounts.TypePercentage,
		Value:          25,
		MinAdoptionFee: 100,
		MaxDiscount:    &max,
		IsActive:       true,
	})

	a, err := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID, DiscountCode: "summer25"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if a.Fee.DiscountAmount != 50 || a.Fee.FinalAmount != 150 {
		t.Fatalf("fee = %+v, want discount 50 final 150", a.Fee)
	}
	if a.Fee.DiscountCode != "SUMMER25" {
		t.Fatalf("discount code = %q", a.Fee.DiscountCode)
	}

	got, err := f.store.Discounts().GetByID(ctx, code.ID)
	if err != nil {
		t.Fatalf("reload code: %v", err)
	}
	if got.UsedCount != 1 {
		t.Fatalf("used count = %d, want 1", got.UsedCount)
	}
}

func TestApply_UnknownCodeIsAnError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID, DiscountCode: "NOPE"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestApply_IneligibleCodeIsSilentlySkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.seedCode(t, discounts.Code{
		Code:               "CATSONLY",
		Name:               "Cats",
		Type:               discounts.TypeFixedAmount,
		Value:              20,
		ApplicablePetTypes: []pets.Type{pets.TypeCat},
		IsActive:           true,
	})

	a, err := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID, DiscountCode: "CATSONLY"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if a.Fee.DiscountAmount != 0 || a.Fee.FinalAmount != 200 {
		t.Fatalf("ineligible code applied: %+v", a.Fee)
	}
}

// failingCreate delegates everything to the wrapped repository but
// refuses Create, to exercise the compensating release.
type failingCreate struct {
	adoptions.Repository
}

func (f *failingCreate) Create(ctx context.Context, a adoptions.Application) (adoptions.Application, error) {
	return adoptions.Application{}, storage.Infra("adoptions.create", errors.New("boom"))
}

func TestApply_ReleasesCodeWhenCreateFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	code := f.seedCode(t, discounts.Code{
		Code:     "WELCOME10",
		Name:     "Welcome",
		Type:     discounts.TypeFixedAmount,
		Value:    10,
		IsActive: true,
	})

	svc := adoptions.NewService(
		&failingCreate{Repository: f.store.Adoptions()},
		f.store.Pets(),
		f.store.Discounts(),
	)

	if _, err := svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID, DiscountCode: "WELCOME10"}); err == nil {
		t.Fatal("apply succeeded against failing repo")
	}

	got, err := f.store.Discounts().GetByID(ctx, code.ID)
	if err != nil {
		t.Fatalf("reload code: %v", err)
	}
	if got.UsedCount != 0 {
		t.Fatalf("used count = %d after rollback, want 0", got.UsedCount)
	}
}

func TestReview_ApprovalFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := adoptions.Actor{UserID: "100"}

	a, err := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	approved, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ReviewedBy != "100" || approved.ReviewedAt == nil {
		t.Fatalf("review metadata not set: %+v", approved)
	}

	pet, _ := f.store.Pets().GetByID(ctx, f.pet.ID)
	if pet.Status != pets.StatusPending {
		t.Fatalf("pet status = %s after approval, want pending", pet.Status)
	}

	if _, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusCompleted}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	pet, _ = f.store.Pets().GetByID(ctx, f.pet.ID)
	if pet.Status != pets.StatusAdopted {
		t.Fatalf("pet status = %s after completion, want adopted", pet.Status)
	}
}

func TestReview_RejectionFreesThePet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := adoptions.Actor{UserID: "100"}

	a, _ := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID})

	if _, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusRejected}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	pet, _ := f.store.Pets().GetByID(ctx, f.pet.ID)
	if pet.Status != pets.StatusAvailable {
		t.Fatalf("pet status = %s after rejection, want available", pet.Status)
	}
}

func TestReview_IllegalTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := adoptions.Actor{UserID: "100"}

	a, _ := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID})

	// pending cannot jump straight to completed
	if _, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusCompleted}); !errors.Is(err, adoptions.ErrBadState) {
		t.Fatalf("pending->completed: got %v, want ErrBadState", err)
	}

	if _, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusRejected}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// rejected is terminal
	if _, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved}); !errors.Is(err, adoptions.ErrBadState) {
		t.Fatalf("rejected->approved: got %v, want ErrBadState", err)
	}
}

func TestReview_Permissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, _ := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID})

	// A random user can neither approve nor cancel.
	stranger := adoptions.Actor{UserID: "999"}
	if _, err := f.svc.Review(ctx, stranger, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved}); !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("stranger approve: got %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Review(ctx, stranger, a.ID, adoptions.ReviewInput{Status: adoptions.StatusCancelled}); !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("stranger cancel: got %v, want ErrForbidden", err)
	}

	// The applicant cannot approve their own application but may
	// cancel it.
	applicant := adoptions.Actor{UserID: "200"}
	if _, err := f.svc.Review(ctx, applicant, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved}); !errors.Is(err, adoptions.ErrForbidden) {
		t.Fatalf("applicant approve: got %v, want ErrForbidden", err)
	}
	cancelled, err := f.svc.Review(ctx, applicant, a.ID, adoptions.ReviewInput{Status: adoptions.StatusCancelled})
	if err != nil {
		t.Fatalf("applicant cancel: %v", err)
	}
	if cancelled.ReviewedBy != "" || cancelled.ReviewedAt != nil {
		t.Fatalf("cancel must not set review metadata: %+v", cancelled)
	}
}

func TestCompletedCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := adoptions.Actor{UserID: "100"}

	a, _ := f.svc.Apply(ctx, "200", adoptions.ApplyInput{PetID: f.pet.ID})
	if _, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusApproved}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.Review(ctx, owner, a.ID, adoptions.ReviewInput{Status: adoptions.StatusCompleted}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	n, err := f.svc.CompletedCount(ctx, "200")
	if err != nil {
		t.Fatalf("completed count: %v", err)
	}
	if n != 1 {
		t.Fatalf("completed count = %d, want 1", n)
	}

	n, _ = f.svc.CompletedCount(ctx, "999")
	if n != 0 {
		t.Fatalf("stranger completed count = %d, want 0", n)
	}
}
