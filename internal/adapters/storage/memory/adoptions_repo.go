package memory

import (
	"context"
	"sort"
	"strings"

	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/storage"
)

type adoptionRepo struct {
	s *Store
}

func (r *adoptionRepo) Create(ctx context.Context, a adoptions.Application) (adoptions.Application, error) {
	if strings.TrimSpace(a.UserID) == "" || strings.TrimSpace(a.PetID) == "" {
		return adoptions.Application{}, storage.Invalid("application", "user and pet required")
	}

	t := &r.s.adoptions
	t.mu.Lock()
	defer t.mu.Unlock()

	now := r.s.now()
	a.ID = t.nextID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = adoptions.StatusPending
	}
	t.rows[a.ID] = a
	return a, nil
}

func (r *adoptionRepo) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	if !storage.IsFallbackID(id) {
		return adoptions.Application{}, storage.ErrNotFound
	}

	t := &r.s.adoptions
	t.mu.RLock()
	defer t.mu.RUnlock()

	a, ok := t.rows[id]
	if !ok {
		return adoptions.Application{}, storage.ErrNotFound
	}
	return a, nil
}

func (r *adoptionRepo) FindOne(ctx context.Context, f adoptions.Filter) (adoptions.Application, error) {
	matches := r.matching(f)
	if len(matches) == 0 {
		return adoptions.Application{}, storage.ErrNotFound
	}
	return matches[0], nil
}

func (r *adoptionRepo) List(ctx context.Context, f adoptions.Filter, page storage.Page) ([]adoptions.Application, int, error) {
	page = page.Normalize()
	matches := r.matching(f)
	return paginate(matches, page.Offset(), page.Size), len(matches), nil
}

func (r *adoptionRepo) Update(ctx context.Context, id string, p adoptions.Patch) (adoptions.Application, error) {
	if !storage.IsFallbackID(id) {
		return adoptions.Application{}, storage.ErrNotFound
	}

	t := &r.s.adoptions
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.rows[id]
	if !ok {
		return adoptions.Application{}, storage.ErrNotFound
	}

	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.AdminNotes != nil {
		a.AdminNotes = *p.AdminNotes
	}
	if p.ReviewedBy != nil {
		a.ReviewedBy = *p.ReviewedBy
	}
	if p.ReviewedAt != nil {
		a.ReviewedAt = p.ReviewedAt
	}
	if p.Pickup != nil {
		a.Pickup = *p.Pickup
	}
	a.UpdatedAt = r.s.now()

	t.rows[id] = a
	return a, nil
}

func (r *adoptionRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsFallbackID(id) {
		return storage.ErrNotFound
	}

	t := &r.s.adoptions
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (r *adoptionRepo) Count(ctx context.Context, f adoptions.Filter) (int, error) {
	return len(r.matching(f)), nil
}

func (r *adoptionRepo) matching(f adoptions.Filter) []adoptions.Application {
	t := &r.s.adoptions
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]adoptions.Application, 0)
	for _, a := range t.rows {
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if f.PetID != "" && a.PetID != f.PetID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, st := range f.Statuses {
				if a.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return newestFirst(
			rowMeta{out[i].ID, out[i].CreatedAt},
			rowMeta{out[j].ID, out[j].CreatedAt},
		)
	})
	return out
}
