package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pet-adoption-market/internal/ports/auth"
	"pet-adoption-market/internal/storage"
)

type fakeVerifier struct {
	claims auth.Claims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	return f.claims, f.err
}

type gateRepo struct {
	Repository
	users map[string]User
}

func (r *gateRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, storage.ErrNotFound
	}
	return u, nil
}

func TestGate_ResolvesUser(t *testing.T) {
	repo := &gateRepo{users: map[string]User{
		"1": {ID: "1", Name: "Ana", Email: "ana@example.com", CredentialHash: "secret"},
	}}
	verifier := &fakeVerifier{claims: auth.Claims{SubjectID: "1"}}

	g := NewGate(verifier, repo, zerolog.Nop())

	u, err := g.Resolve(context.Background(), "token")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.ID != "1" || u.Name != "Ana" {
		t.Fatalf("resolved wrong user: %+v", u)
	}
	if u.CredentialHash != "" {
		t.Fatal("credential hash leaked through the gate")
	}
}

func TestGate_RejectsEmptyToken(t *testing.T) {
	g := NewGate(&fakeVerifier{}, &gateRepo{}, zerolog.Nop())

	if _, err := g.Resolve(context.Background(), "  "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestGate_RejectsBadCredential(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("verification failed")}
	g := NewGate(verifier, &gateRepo{}, zerolog.Nop())

	if _, err := g.Resolve(context.Background(), "token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestGate_RejectsExpiredClaims(t *testing.T) {
	verifier := &fakeVerifier{claims: auth.Claims{
		SubjectID: "1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}}
	repo := &gateRepo{users: map[string]User{"1": {ID: "1"}}}

	g := NewGate(verifier, repo, zerolog.Nop())

	if _, err := g.Resolve(context.Background(), "token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestGate_UnknownSubject(t *testing.T) {
	verifier := &fakeVerifier{claims: auth.Claims{SubjectID: "404"}}
	g := NewGate(verifier, &gateRepo{users: map[string]User{}}, zerolog.Nop())

	if _, err := g.Resolve(context.Background(), "token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}
