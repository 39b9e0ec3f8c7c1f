package tokenapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-adoption-market/internal/ports/auth"
)

var ErrTokenEmpty = errors.New("token is empty")

// Verifier implements auth.Verifier on top of the HTTP client.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("token verify failed: %w", err)
	}

	claims.SubjectID = strings.TrimSpace(claims.SubjectID)
	if claims.SubjectID == "" {
		return auth.Claims{}, errors.New("claims missing subject id")
	}
	return claims, nil
}
