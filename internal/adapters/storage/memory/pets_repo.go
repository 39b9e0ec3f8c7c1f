package memory

import (
	"context"
	"sort"
	"strings"

	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

type petRepo struct {
	s *Store
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	if strings.TrimSpace(p.Name) == "" || p.Type == "" || strings.TrimSpace(p.OwnerID) == "" {
		return pets.Pet{}, storage.Invalid("pet", "name, type and owner required")
	}

	t := &r.s.pets
	t.mu.Lock()
	defer t.mu.Unlock()

	now := r.s.now()
	p.ID = t.nextID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = pets.StatusAvailable
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.WishlistedBy == nil {
		p.WishlistedBy = []string{}
	}
	t.rows[p.ID] = p
	return p, nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	if !storage.IsFallbackID(id) {
		return pets.Pet{}, storage.ErrNotFound
	}

	t := &r.s.pets
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.rows[id]
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}
	return p, nil
}

// GetDetail expands the owner from the in-memory users table, using
// the same projection shape the primary adapter returns from its join.
func (r *petRepo) GetDetail(ctx context.Context, id string) (pets.Detail, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return pets.Detail{}, err
	}

	d := pets.Detail{Pet: p}

	ut := &r.s.users
	ut.mu.RLock()
	u, ok := ut.rows[p.OwnerID]
	ut.mu.RUnlock()
	if ok {
		d.Owner = &pets.OwnerSummary{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			Phone:         u.Phone,
			AverageRating: u.AverageRating,
			TotalReviews:  u.TotalReviews,
		}
	}

	return d, nil
}

func (r *petRepo) FindOne(ctx context.Context, f pets.Filter) (pets.Pet, error) {
	matches := r.matching(f)
	if len(matches) == 0 {
		return pets.Pet{}, storage.ErrNotFound
	}
	return matches[0], nil
}

func (r *petRepo) List(ctx context.Context, f pets.Filter, page storage.Page) ([]pets.Pet, int, error) {
	page = page.Normalize()
	matches := r.matching(f)
	return paginate(matches, page.Offset(), page.Size), len(matches), nil
}

func (r *petRepo) Update(ctx context.Context, id string, p pets.Patch) (pets.Pet, error) {
	if !storage.IsFallbackID(id) {
		return pets.Pet{}, storage.ErrNotFound
	}

	t := &r.s.pets
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.rows[id]
	if !ok {
		return pets.Pet{}, storage.ErrNotFound
	}

	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.Type != nil {
		cur.Type = *p.Type
	}
	if p.Breed != nil {
		cur.Breed = *p.Breed
	}
	if p.Age != nil {
		cur.Age = *p.Age
	}
	if p.AgeUnit != nil {
		cur.AgeUnit = *p.AgeUnit
	}
	if p.Gender != nil {
		cur.Gender = *p.Gender
	}
	if p.Size != nil {
		cur.Size = *p.Size
	}
	if p.Color != nil {
		cur.Color = *p.Color
	}
	if p.Description != nil {
		cur.Description = *p.Description
	}
	if p.Images != nil {
		cur.Images = *p.Images
	}
	if p.Health != nil {
		cur.Health = *p.Health
	}
	if p.Temperament != nil {
		cur.Temperament = *p.Temperament
	}
	if p.GoodWith != nil {
		cur.GoodWith = *p.GoodWith
	}
	if p.Location != nil {
		cur.Location = *p.Location
	}
	if p.Status != nil {
		cur.Status = *p.Status
	}
	if p.AdoptionFee != nil {
		cur.AdoptionFee = *p.AdoptionFee
	}
	if p.Views != nil {
		cur.Views = *p.Views
	}
	if p.WishlistedBy != nil {
		cur.WishlistedBy = *p.WishlistedBy
	}
	cur.UpdatedAt = r.s.now()

	t.rows[id] = cur
	return cur, nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsFallbackID(id) {
		return storage.ErrNotFound
	}

	t := &r.s.pets
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (r *petRepo) Count(ctx context.Context, f pets.Filter) (int, error) {
	return len(r.matching(f)), nil
}

func (r *petRepo) matching(f pets.Filter) []pets.Pet {
	t := &r.s.pets
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range t.rows {
		if !matchPet(p, f) {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return newestFirst(
			rowMeta{out[i].ID, out[i].CreatedAt},
			rowMeta{out[j].ID, out[j].CreatedAt},
		)
	})
	return out
}

func matchPet(p pets.Pet, f pets.Filter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Breed != "" && !strings.Contains(strings.ToLower(p.Breed), strings.ToLower(f.Breed)) {
		return false
	}
	if f.Size != "" && p.Size != f.Size {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.MinAge != nil && p.Age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && p.Age > *f.MaxAge {
		return false
	}
	if f.OwnerID != "" && p.OwnerID != f.OwnerID {
		return false
	}
	if f.WishlistedBy != "" && !p.IsWishlistedBy(f.WishlistedBy) {
		return false
	}
	if f.Search != "" {
		// Substring match over the same fields the primary backend
		// text-indexes.
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Breed), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}
