package pets

import (
	"fmt"
	"time"
)

// Type defines the supported species.
// @Enum dog, cat, bird, rabbit, fish, other
type Type string

const (
	TypeDog    Type = "dog"
	TypeCat    Type = "cat"
	TypeBird   Type = "bird"
	TypeRabbit Type = "rabbit"
	TypeFish   Type = "fish"
	TypeOther  Type = "other"
)

// AgeUnit qualifies the Age field.
type AgeUnit string

const (
	AgeMonths AgeUnit = "months"
	AgeYears  AgeUnit = "years"
)

// Gender of the pet.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Size bucket.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Status is the adoption state. A pet is in exactly one at any time
// and transitions only through the explicit status operation.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusAdopted   Status = "adopted"
)

// AgeGroup buckets pets for discount applicability.
type AgeGroup string

const (
	AgePuppy  AgeGroup = "puppy"
	AgeYoung  AgeGroup = "young"
	AgeAdult  AgeGroup = "adult"
	AgeSenior AgeGroup = "senior"
)

type HealthStatus struct {
	Vaccinated              bool
	SpayedNeutered          bool
	Microchipped            bool
	SpecialNeeds            bool
	SpecialNeedsDescription string
}

type GoodWith struct {
	Children bool
	Dogs     bool
	Cats     bool
}

type Location struct {
	City    string
	State   string
	ZipCode string
}

// Pet is a marketplace listing. Images are opaque references supplied
// by the upload subsystem. WishlistedBy is a set; membership toggles
// are idempotent.
type Pet struct {
	ID      string
	OwnerID string

	Name        string
	Type        Type
	Breed       string
	Age         int
	AgeUnit     AgeUnit
	Gender      Gender
	Size        Size
	Color       string
	Description string

	Images      []string
	Health      HealthStatus
	Temperament []string
	GoodWith    GoodWith
	Location    Location

	Status      Status
	AdoptionFee float64

	Views        int
	WishlistedBy []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Pet) AgeInMonths() int {
	if p.AgeUnit == AgeYears {
		return p.Age * 12
	}
	return p.Age
}

func (p Pet) AgeGroup() AgeGroup {
	m := p.AgeInMonths()
	switch {
	case m < 12:
		return AgePuppy
	case m < 36:
		return AgeYoung
	case m < 96:
		return AgeAdult
	default:
		return AgeSenior
	}
}

func (p Pet) FormattedAge() string {
	if p.AgeUnit == AgeMonths && p.Age >= 12 {
		years := p.Age / 12
		months := p.Age % 12
		if months > 0 {
			return fmt.Sprintf("%s %s", plural(years, "year"), plural(months, "month"))
		}
		return plural(years, "year")
	}
	return fmt.Sprintf("%d %s", p.Age, p.AgeUnit)
}

func (p Pet) IsWishlistedBy(userID string) bool {
	for _, id := range p.WishlistedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// OwnerSummary is the restricted projection returned when a listing is
// expanded with its owner ("populate"). It intentionally excludes the
// credential hash and anything else the caller did not ask for.
type OwnerSummary struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	AverageRating float64
	TotalReviews  int
}

// Detail is a pet with its owner expanded.
type Detail struct {
	Pet
	Owner *OwnerSummary
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func ValidType(t Type) bool {
	switch t {
	case TypeDog, TypeCat, TypeBird, TypeRabbit, TypeFish, TypeOther:
		return true
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusPending, StatusAdopted:
		return true
	}
	return false
}

func ValidGender(g Gender) bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

func ValidSize(s Size) bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}
