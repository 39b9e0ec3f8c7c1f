package pets_test

import (
	"context"
	"errors"
	"testing"

	"pet-adoption-market/internal/adapters/storage/memory"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

func newService(t *testing.T) (*pets.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return pets.NewService(store.Pets()), store
}

func validInput() pets.CreateInput {
	return pets.CreateInput{
		Name:        "Rex",
		Type:        "dog",
		Breed:       "mixed",
		Age:         6,
		AgeUnit:     "months",
		Gender:      "male",
		Size:        "medium",
		Description: "a friendly dog",
		AdoptionFee: 150,
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Create(context.Background(), "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Status != pets.StatusAvailable {
		t.Fatalf("status = %s, want available", p.Status)
	}
	if p.ID == "" {
		t.Fatal("no id assigned")
	}
}

func TestCreate_RejectsBadEnums(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	in := validInput()
	in.Type = "dinosaur"
	if _, err := svc.Create(ctx, "o", in); !errors.Is(err, pets.ErrInvalidInput) {
		t.Fatalf("bad type: got %v", err)
	}

	in = validInput()
	in.Gender = "yes"
	if _, err := svc.Create(ctx, "o", in); !errors.Is(err, pets.ErrInvalidInput) {
		t.Fatalf("bad gender: got %v", err)
	}

	in = validInput()
	in.AdoptionFee = -1
	if _, err := svc.Create(ctx, "o", in); !errors.Is(err, pets.ErrInvalidInput) {
		t.Fatalf("negative fee: got %v", err)
	}
}

func TestGet_BumpsViewCounter(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, "owner-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	d, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Views != 1 {
		t.Fatalf("views = %d after first get, want 1", d.Views)
	}

	d, _ = svc.Get(ctx, p.ID)
	if d.Views != 2 {
		t.Fatalf("views = %d after second get, want 2", d.Views)
	}
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, _ := svc.Create(ctx, "owner-1", validInput())

	name := "Max"
	_, err := svc.Update(ctx, pets.Actor{UserID: "intruder"}, p.ID, pets.UpdateInput{Name: &name})
	if !errors.Is(err, pets.ErrForbidden) {
		t.Fatalf("intruder update: got %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(ctx, pets.Actor{UserID: "owner-1"}, p.ID, pets.UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "Max" {
		t.Fatalf("name = %q", updated.Name)
	}

	// Admins bypass ownership.
	name = "Bruno"
	if _, err := svc.Update(ctx, pets.Actor{UserID: "x", Admin: true}, p.ID, pets.UpdateInput{Name: &name}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestToggleWishlist(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, _ := svc.Create(ctx, "owner-1", validInput())

	_, wishlisted, err := svc.ToggleWishlist(ctx, "user-9", p.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !wishlisted {
		t.Fatal("first toggle did not add")
	}

	updated, wishlisted, err := svc.ToggleWishlist(ctx, "user-9", p.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if wishlisted {
		t.Fatal("second toggle did not remove")
	}
	if updated.IsWishlistedBy("user-9") {
		t.Fatal("user still in wishlist after removal")
	}
}

func TestWishlist_ListsOnlyWishlistedPets(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, "owner-1", validInput())
	b, _ := svc.Create(ctx, "owner-1", validInput())

	if _, _, err := svc.ToggleWishlist(ctx, "user-9", a.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	res, err := svc.Wishlist(ctx, "user-9", storage.Page{})
	if err != nil {
		t.Fatalf("wishlist: %v", err)
	}
	if len(res.Pets) != 1 || res.Pets[0].ID != a.ID {
		t.Fatalf("wishlist = %+v, want only %s (not %s)", res.Pets, a.ID, b.ID)
	}
}

func TestAgeGroups(t *testing.T) {
	cases := []struct {
		age  int
		unit pets.AgeUnit
		want pets.AgeGroup
	}{
		{6, pets.AgeMonths, pets.AgePuppy},
		{11, pets.AgeMonths, pets.AgePuppy},
		{12, pets.AgeMonths, pets.AgeYoung},
		{2, pets.AgeYears, pets.AgeYoung},
		{3, pets.AgeYears, pets.AgeAdult},
		{7, pets.AgeYears, pets.AgeAdult},
		{8, pets.AgeYears, pets.AgeSenior},
	}
	for _, tc := range cases {
		p := pets.Pet{Age: tc.age, AgeUnit: tc.unit}
		if got := p.AgeGroup(); got != tc.want {
			t.Errorf("%d %s: got %s, want %s", tc.age, tc.unit, got, tc.want)
		}
	}
}

func TestFormattedAge(t *testing.T) {
	p := pets.Pet{Age: 18, AgeUnit: pets.AgeMonths}
	if got := p.FormattedAge(); got != "1 year 6 months" {
		t.Fatalf("got %q", got)
	}

	p = pets.Pet{Age: 24, AgeUnit: pets.AgeMonths}
	if got := p.FormattedAge(); got != "2 years" {
		t.Fatalf("got %q", got)
	}

	p = pets.Pet{Age: 5, AgeUnit: pets.AgeMonths}
	if got := p.FormattedAge(); got != "5 months" {
		t.Fatalf("got %q", got)
	}
}
