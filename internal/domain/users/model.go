package users

import "time"

// User is an account in the marketplace. CredentialHash is opaque to
// this service: it is produced and checked by the external credential
// system and must never reach API responses.
type User struct {
	ID             string
	Name           string
	Email          string
	CredentialHash string
	Phone          string
	IsAdmin        bool

	// Aggregate review rating, maintained by the review subsystem.
	AverageRating float64
	TotalReviews  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Redacted returns a copy safe to hand outside the core.
func (u User) Redacted() User {
	u.CredentialHash = ""
	return u
}
