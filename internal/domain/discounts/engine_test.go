package discounts

import (
	"testing"
	"time"

	"pet-adoption-market/internal/domain/pets"
)

func summerCode() Code {
	max := 50.0
	return Code{
		Code:           "SUMMER25",
		Name:           "Summer Special",
		Type:           TypePercentage,
		Value:          25,
		MinAdoptionFee: 100,
		MaxDiscount:    &max,
		ValidFrom:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
		IsActive:       true,
	}
}

func midSummer() time.Time {
	return time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
}

func TestCalculate_PercentageClampedToMax(t *testing.T) {
	c := summerCode()

	// 25% of 200 is 50, exactly the cap.
	if got := Calculate(c, 200, midSummer()); got != 50 {
		t.Fatalf("fee 200: got %v, want 50", got)
	}

	// 25% of 400 is 100, clamped to 50.
	if got := Calculate(c, 400, midSummer()); got != 50 {
		t.Fatalf("fee 400: got %v, want 50 (capped)", got)
	}
}

func TestCalculate_BelowMinimumFee(t *testing.T) {
	c := summerCode()
	if got := Calculate(c, 80, midSummer()); got != 0 {
		t.Fatalf("fee below minimum: got %v, want 0", got)
	}
}

func TestCalculate_OutsideValidityWindow(t *testing.T) {
	c := summerCode()

	before := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	if got := Calculate(c, 200, before); got != 0 {
		t.Fatalf("before window: got %v, want 0", got)
	}
	if got := Calculate(c, 200, after); got != 0 {
		t.Fatalf("after window: got %v, want 0", got)
	}
}

func TestCalculate_UsageLimitExhausted(t *testing.T) {
	limit := 100
	c := Code{
		Code:       "WELCOME10",
		Type:       TypeFixedAmount,
		Value:      10,
		ValidFrom:  midSummer().Add(-time.Hour),
		ValidUntil: midSummer().Add(time.Hour),
		UsageLimit: &limit,
		UsedCount:  100,
		IsActive:   true,
	}

	if IsValid(c, midSummer()) {
		t.Fatal("exhausted code reported valid")
	}
	if got := Calculate(c, 200, midSummer()); got != 0 {
		t.Fatalf("exhausted code: got %v, want 0", got)
	}

	c.UsedCount = 99
	if !IsValid(c, midSummer()) {
		t.Fatal("code with one use left reported invalid")
	}
}

func TestCalculate_FixedAmount(t *testing.T) {
	c := Code{
		Code:       "FIRSTTIME20",
		Type:       TypeFixedAmount,
		Value:      20,
		ValidFrom:  midSummer().Add(-time.Hour),
		ValidUntil: midSummer().Add(time.Hour),
		IsActive:   true,
	}

	if got := Calculate(c, 100, midSummer()); got != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestCalculate_NeverExceedsFee(t *testing.T) {
	c := Code{
		Type:       TypeFixedAmount,
		Value:      50,
		ValidFrom:  midSummer().Add(-time.Hour),
		ValidUntil: midSummer().Add(time.Hour),
		IsActive:   true,
	}

	if got := Calculate(c, 30, midSummer()); got != 30 {
		t.Fatalf("got %v, want 30 (clamped to fee)", got)
	}
}

func TestCalculate_InactiveCode(t *testing.T) {
	c := summerCode()
	c.IsActive = false
	if got := Calculate(c, 200, midSummer()); got != 0 {
		t.Fatalf("inactive code: got %v, want 0", got)
	}
}

func TestEligibility_FirstTimeAdoptersOnly(t *testing.T) {
	c := Code{FirstTimeAdoptersOnly: true}

	if ok, _ := Eligibility(c, EligibilityContext{PriorCompletedAdoptions: 0}); !ok {
		t.Fatal("first-time adopter rejected")
	}
	if ok, reason := Eligibility(c, EligibilityContext{PriorCompletedAdoptions: 2}); ok || reason == "" {
		t.Fatalf("repeat adopter accepted (ok=%v reason=%q)", ok, reason)
	}
}

func TestEligibility_AllowedUsers(t *testing.T) {
	c := Code{AllowedUserIDs: []string{"u1", "u2"}}

	if ok, _ := Eligibility(c, EligibilityContext{UserID: "u2"}); !ok {
		t.Fatal("listed user rejected")
	}
	if ok, _ := Eligibility(c, EligibilityContext{UserID: "u3"}); ok {
		t.Fatal("unlisted user accepted")
	}
}

func TestEligibility_PetRestrictions(t *testing.T) {
	c := Code{
		ApplicablePetTypes: []pets.Type{pets.TypeDog},
		ApplicablePetAges:  []pets.AgeGroup{pets.AgeSenior},
	}

	ec := EligibilityContext{PetType: pets.TypeDog, PetAgeGroup: pets.AgeSenior}
	if ok, _ := Eligibility(c, ec); !ok {
		t.Fatal("matching pet rejected")
	}

	ec.PetType = pets.TypeCat
	if ok, _ := Eligibility(c, ec); ok {
		t.Fatal("wrong pet type accepted")
	}

	ec.PetType = pets.TypeDog
	ec.PetAgeGroup = pets.AgePuppy
	if ok, _ := Eligibility(c, ec); ok {
		t.Fatal("wrong age group accepted")
	}

	// No pet in context: type/age restrictions are not checked.
	if ok, _ := Eligibility(c, EligibilityContext{}); !ok {
		t.Fatal("petless context rejected")
	}
}

func TestEligibility_MinimumFee(t *testing.T) {
	c := Code{MinAdoptionFee: 100}

	if ok, _ := Eligibility(c, EligibilityContext{ProposedFee: 100}); !ok {
		t.Fatal("fee at minimum rejected")
	}
	if ok, _ := Eligibility(c, EligibilityContext{ProposedFee: 99}); ok {
		t.Fatal("fee below minimum accepted")
	}
}
