package auth

import "context"

// Verifier checks an opaque bearer credential and returns its claims.
// Credential issuance and signing live outside this service.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
