package discounts

import (
	"fmt"
	"time"

	"pet-adoption-market/internal/domain/pets"
)

// The engine is pure: total functions over a Code snapshot, no side
// effects, no backend knowledge. Consuming a code (incrementing
// UsedCount) is the caller's job, after the application that used it
// has been committed.

// IsValid reports whether the code can be applied at the given
// instant: active, inside its validity window, and under its usage
// limit when one is set.
func IsValid(c Code, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}

// EligibilityContext is the adopter/pet snapshot the restrictions are
// checked against, taken from whichever backend answered the request.
type EligibilityContext struct {
	UserID                  string
	PriorCompletedAdoptions int
	PetType                 pets.Type
	PetAgeGroup             pets.AgeGroup
	ProposedFee             float64
}

// Eligibility checks the code's restrictions and returns a
// human-readable reason on failure.
func Eligibility(c Code, ec EligibilityContext) (bool, string) {
	if c.FirstTimeAdoptersOnly && ec.PriorCompletedAdoptions > 0 {
		return false, "this discount is only for first-time adopters"
	}

	if len(c.AllowedUserIDs) > 0 {
		allowed := false
		for _, id := range c.AllowedUserIDs {
			if id == ec.UserID {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, "this discount is not available for your account"
		}
	}

	if len(c.ApplicablePetTypes) > 0 && ec.PetType != "" {
		match := false
		for _, t := range c.ApplicablePetTypes {
			if t == ec.PetType {
				match = true
				break
			}
		}
		if !match {
			return false, "this discount does not apply to this pet type"
		}
	}

	if len(c.ApplicablePetAges) > 0 && ec.PetAgeGroup != "" {
		match := false
		for _, g := range c.ApplicablePetAges {
			if g == ec.PetAgeGroup {
				match = true
				break
			}
		}
		if !match {
			return false, "this discount does not apply to this pet's age group"
		}
	}

	if ec.ProposedFee < c.MinAdoptionFee {
		return false, fmt.Sprintf("minimum adoption fee of $%g required", c.MinAdoptionFee)
	}

	return true, ""
}

// Calculate returns the discount amount for the fee. Zero when the
// code is not valid at `now` or the fee is below the minimum. The
// result is clamped to MaxDiscount when set, and never exceeds the
// fee itself.
func Calculate(c Code, fee float64, now time.Time) float64 {
	if !IsValid(c, now) || fee < c.MinAdoptionFee {
		return 0
	}

	var discount float64
	if c.Type == TypePercentage {
		discount = fee * c.Value / 100
	} else {
		discount = c.Value
	}

	if c.MaxDiscount != nil && discount > *c.MaxDiscount {
		discount = *c.MaxDiscount
	}
	if discount > fee {
		discount = fee
	}
	return discount
}
