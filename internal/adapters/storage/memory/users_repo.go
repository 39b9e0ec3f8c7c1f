package memory

import (
	"context"
	"sort"
	"strings"

	"pet-adoption-market/internal/domain/users"
	"pet-adoption-market/internal/storage"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" {
		return users.User{}, storage.Invalid("user", "name and email required")
	}

	t := &r.s.users
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, existing := range t.rows {
		if strings.EqualFold(existing.Email, u.Email) {
			return users.User{}, storage.ErrDuplicate
		}
	}

	now := r.s.now()
	u.ID = t.nextID()
	u.CreatedAt = now
	u.UpdatedAt = now
	t.rows[u.ID] = u
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	if !storage.IsFallbackID(id) {
		return users.User{}, storage.ErrNotFound
	}

	t := &r.s.users
	t.mu.RLock()
	defer t.mu.RUnlock()

	u, ok := t.rows[id]
	if !ok {
		return users.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (r *userRepo) FindOne(ctx context.Context, f users.Filter) (users.User, error) {
	matches := r.matching(f)
	if len(matches) == 0 {
		return users.User{}, storage.ErrNotFound
	}
	return matches[0], nil
}

func (r *userRepo) List(ctx context.Context, f users.Filter, page storage.Page) ([]users.User, int, error) {
	page = page.Normalize()
	matches := r.matching(f)
	return paginate(matches, page.Offset(), page.Size), len(matches), nil
}

func (r *userRepo) Update(ctx context.Context, id string, p users.Patch) (users.User, error) {
	if !storage.IsFallbackID(id) {
		return users.User{}, storage.ErrNotFound
	}

	t := &r.s.users
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.rows[id]
	if !ok {
		return users.User{}, storage.ErrNotFound
	}

	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.CredentialHash != nil {
		u.CredentialHash = *p.CredentialHash
	}
	if p.AverageRating != nil {
		u.AverageRating = *p.AverageRating
	}
	if p.TotalReviews != nil {
		u.TotalReviews = *p.TotalReviews
	}
	u.UpdatedAt = r.s.now()

	t.rows[id] = u
	return u, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsFallbackID(id) {
		return storage.ErrNotFound
	}

	t := &r.s.users
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (r *userRepo) Count(ctx context.Context, f users.Filter) (int, error) {
	return len(r.matching(f)), nil
}

func (r *userRepo) matching(f users.Filter) []users.User {
	t := &r.s.users
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]users.User, 0)
	for _, u := range t.rows {
		if f.Email != "" && !strings.EqualFold(u.Email, f.Email) {
			continue
		}
		if f.IsAdmin != nil && u.IsAdmin != *f.IsAdmin {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(u.Name), q) &&
				!strings.Contains(strings.ToLower(u.Email), q) {
				continue
			}
		}
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		return newestFirst(
			rowMeta{out[i].ID, out[i].CreatedAt},
			rowMeta{out[j].ID, out[j].CreatedAt},
		)
	})
	return out
}
