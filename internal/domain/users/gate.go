package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pet-adoption-market/internal/ports/auth"
	"pet-adoption-market/internal/storage"
)

var ErrUnauthorized = errors.New("unauthorized")

// Gate resolves an opaque bearer credential to a User record. The
// repository handed in here is expected to be the failover-wrapped
// one, so a primary outage during the lookup is retried against the
// fallback table before the credential is rejected.
type Gate struct {
	verifier auth.Verifier
	repo     Repository
	now      func() time.Time
	log      zerolog.Logger
}

func NewGate(verifier auth.Verifier, repo Repository, log zerolog.Logger) *Gate {
	return &Gate{
		verifier: verifier,
		repo:     repo,
		now:      time.Now,
		log:      log,
	}
}

func (g *Gate) Resolve(ctx context.Context, token string) (User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return User{}, ErrUnauthorized
	}
	if g.verifier == nil {
		return User{}, ErrUnauthorized
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		g.log.Debug().Err(err).Msg("credential verification failed")
		return User{}, ErrUnauthorized
	}
	if strings.TrimSpace(claims.SubjectID) == "" {
		return User{}, ErrUnauthorized
	}
	if !claims.ExpiresAt.IsZero() && g.now().After(claims.ExpiresAt) {
		return User{}, ErrUnauthorized
	}

	u, err := g.repo.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return User{}, ErrUnauthorized
		}
		// Fallback also failed; surface the real error.
		return User{}, err
	}

	return u.Redacted(), nil
}
