package adoptions

import "time"

// Status of an adoption application.
// @Enum pending, approved, rejected, completed, cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PickupMethod for the adopted pet.
type PickupMethod string

const (
	PickupShelter    PickupMethod = "shelter"
	PickupFosterHome PickupMethod = "foster_home"
	PickupVetClinic  PickupMethod = "vet_clinic"
	PickupDelivery   PickupMethod = "delivery"
)

type PickupLocation struct {
	Address string
	City    string
	State   string
	ZipCode string
}

type PickupOptions struct {
	Method        PickupMethod
	Location      PickupLocation
	ScheduledDate *time.Time
	Notes         string
}

// FeeBreakdown is the finalized fee triple. FinalAmount is always
// OriginalAmount minus DiscountAmount, and the discount never exceeds
// the original.
type FeeBreakdown struct {
	OriginalAmount float64
	DiscountAmount float64
	FinalAmount    float64
	DiscountCode   string
}

// Details carries the free-text application answers.
type Details struct {
	Experience        string
	LivingSituation   string
	OtherPets         string
	Children          string
	WorkSchedule      string
	ReasonForAdoption string
}

// Application links one adopter to one pet. At most one application
// per (user, pet) pair may be pending or approved at a time.
type Application struct {
	ID     string
	UserID string
	PetID  string

	Status  Status
	Fee     FeeBreakdown
	Pickup  PickupOptions
	Details Details

	AdminNotes string
	ReviewedBy string
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the application still blocks a new one for
// the same (user, pet) pair.
func (a Application) Active() bool {
	return a.Status == StatusPending || a.Status == StatusApproved
}
