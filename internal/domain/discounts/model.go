package discounts

import (
	"time"

	"pet-adoption-market/internal/domain/pets"
)

// Type of discount.
// @Enum percentage, fixed_amount
type Type string

const (
	TypePercentage  Type = "percentage"
	TypeFixedAmount Type = "fixed_amount"
)

// Code is a promotional discount code. The code string is stored
// upper-cased and looked up case-insensitively. UsedCount only ever
// increases and never exceeds UsageLimit when that is set.
type Code struct {
	ID          string
	Code        string
	Name        string
	Description string

	Type  Type
	Value float64

	MinAdoptionFee float64
	MaxDiscount    *float64 // nil = no cap

	ValidFrom  time.Time
	ValidUntil time.Time

	UsageLimit *int // nil = unlimited
	UsedCount  int
	IsActive   bool

	// Empty sets mean no restriction.
	ApplicablePetTypes []pets.Type
	ApplicablePetAges  []pets.AgeGroup

	FirstTimeAdoptersOnly bool
	AllowedUserIDs        []string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidKind(t Type) bool {
	return t == TypePercentage || t == TypeFixedAmount
}
