package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-market/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmailTaken   = errors.New("email already registered")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RegisterInput struct {
	Name           string
	Email          string
	CredentialHash string
	Phone          string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash := strings.TrimSpace(in.CredentialHash)

	if name == "" || email == "" || hash == "" {
		return User{}, ErrInvalidInput
	}
	if !strings.Contains(email, "@") {
		return User{}, ErrInvalidInput
	}

	if _, err := s.repo.FindOne(ctx, Filter{Email: email}); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return User{}, err
	}

	u := User{
		Name:           name,
		Email:          email,
		CredentialHash: hash,
		Phone:          strings.TrimSpace(in.Phone),
	}

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, err
	}
	return created.Redacted(), nil
}

func (s *Service) Profile(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return u.Redacted(), nil
}

type UpdateProfileInput struct {
	Name           *string
	Phone          *string
	CredentialHash *string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrInvalidInput
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.Update(ctx, id, Patch{
		Name:           trimmed(in.Name),
		Phone:          trimmed(in.Phone),
		CredentialHash: trimmed(in.CredentialHash),
	})
	if err != nil {
		return User{}, err
	}
	return u.Redacted(), nil
}

// RecordReview folds a new review score into the aggregate rating.
// The review subsystem itself lives outside this core.
func (s *Service) RecordReview(ctx context.Context, id string, score float64) (User, error) {
	if score < 0 || score > 5 {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	total := u.TotalReviews + 1
	avg := (u.AverageRating*float64(u.TotalReviews) + score) / float64(total)

	updated, err := s.repo.Update(ctx, id, Patch{
		AverageRating: &avg,
		TotalReviews:  &total,
	})
	if err != nil {
		return User{}, err
	}
	return updated.Redacted(), nil
}

type ListResult struct {
	Users    []User
	PageInfo storage.PageInfo
}

// ListAll is admin-only; authorization happens in the handler.
func (s *Service) ListAll(ctx context.Context, f Filter, page storage.Page) (ListResult, error) {
	page = page.Normalize()

	items, total, err := s.repo.List(ctx, f, page)
	if err != nil {
		return ListResult{}, err
	}

	out := make([]User, 0, len(items))
	for _, u := range items {
		out = append(out, u.Redacted())
	}

	return ListResult{
		Users:    out,
		PageInfo: storage.NewPageInfo(page, total),
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
