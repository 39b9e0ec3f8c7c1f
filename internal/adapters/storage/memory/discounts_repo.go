package memory

import (
	"context"
	"sort"
	"strings"

	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/storage"
)

type discountRepo struct {
	s *Store
}

func (r *discountRepo) Create(ctx context.Context, c discounts.Code) (discounts.Code, error) {
	code := strings.ToUpper(strings.TrimSpace(c.Code))
	if code == "" || strings.TrimSpace(c.Name) == "" {
		return discounts.Code{}, storage.Invalid("discount", "code and name required")
	}

	t := &r.s.codes
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, existing := range t.rows {
		if existing.Code == code {
			return discounts.Code{}, storage.ErrDuplicate
		}
	}

	now := r.s.now()
	c.ID = t.nextID()
	c.Code = code
	c.CreatedAt = now
	c.UpdatedAt = now
	t.rows[c.ID] = c
	return c, nil
}

func (r *discountRepo) GetByID(ctx context.Context, id string) (discounts.Code, error) {
	if !storage.IsFallbackID(id) {
		return discounts.Code{}, storage.ErrNotFound
	}

	t := &r.s.codes
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.rows[id]
	if !ok {
		return discounts.Code{}, storage.ErrNotFound
	}
	return c, nil
}

func (r *discountRepo) GetByCode(ctx context.Context, code string) (discounts.Code, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	t := &r.s.codes
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, c := range t.rows {
		if c.Code == code {
			return c, nil
		}
	}
	return discounts.Code{}, storage.ErrNotFound
}

func (r *discountRepo) List(ctx context.Context, f discounts.Filter, page storage.Page) ([]discounts.Code, int, error) {
	page = page.Normalize()
	matches := r.matching(f)
	return paginate(matches, page.Offset(), page.Size), len(matches), nil
}

func (r *discountRepo) Update(ctx context.Context, id string, p discounts.Patch) (discounts.Code, error) {
	if !storage.IsFallbackID(id) {
		return discounts.Code{}, storage.ErrNotFound
	}

	t := &r.s.codes
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.rows[id]
	if !ok {
		return discounts.Code{}, storage.ErrNotFound
	}

	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.MinAdoptionFee != nil {
		c.MinAdoptionFee = *p.MinAdoptionFee
	}
	if p.MaxDiscount != nil {
		c.MaxDiscount = p.MaxDiscount
	}
	if p.ValidFrom != nil {
		c.ValidFrom = *p.ValidFrom
	}
	if p.ValidUntil != nil {
		c.ValidUntil = *p.ValidUntil
	}
	if p.UsageLimit != nil {
		c.UsageLimit = p.UsageLimit
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.ApplicablePetTypes != nil {
		c.ApplicablePetTypes = *p.ApplicablePetTypes
	}
	if p.ApplicablePetAges != nil {
		c.ApplicablePetAges = *p.ApplicablePetAges
	}
	if p.FirstTimeAdoptersOnly != nil {
		c.FirstTimeAdoptersOnly = *p.FirstTimeAdoptersOnly
	}
	if p.AllowedUserIDs != nil {
		c.AllowedUserIDs = *p.AllowedUserIDs
	}
	c.UpdatedAt = r.s.now()

	t.rows[id] = c
	return c, nil
}

func (r *discountRepo) Delete(ctx context.Context, id string) error {
	if !storage.IsFallbackID(id) {
		return storage.ErrNotFound
	}

	t := &r.s.codes
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (r *discountRepo) Count(ctx context.Context, f discounts.Filter) (int, error) {
	return len(r.matching(f)), nil
}

// Consume increments usedCount under the table lock so the limit can
// never be overshot by concurrent applications.
func (r *discountRepo) Consume(ctx context.Context, id string) error {
	if !storage.IsFallbackID(id) {
		return storage.ErrNotFound
	}

	t := &r.s.codes
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.rows[id]
	if !ok {
		return storage.ErrNotFound
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return discounts.ErrExhausted
	}

	c.UsedCount++
	c.UpdatedAt = r.s.now()
	t.rows[id] = c
	return nil
}

func (r *discountRepo) Release(ctx context.Context, id string) error {
	if !storage.IsFallbackID(id) {
		return storage.ErrNotFound
	}

	t := &r.s.codes
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.rows[id]
	if !ok {
		return storage.ErrNotFound
	}
	if c.UsedCount > 0 {
		c.UsedCount--
		c.UpdatedAt = r.s.now()
		t.rows[id] = c
	}
	return nil
}

func (r *discountRepo) Stats(ctx context.Context) (discounts.Stats, error) {
	all := r.matching(discounts.Filter{})
	now := r.s.now()

	stats := discounts.Stats{Total: len(all)}
	for _, c := range all {
		if c.IsActive {
			stats.Active++
		}
		if c.ValidUntil.Before(now) {
			stats.Expired++
		}
	}

	byUse := make([]discounts.Code, len(all))
	copy(byUse, all)
	sort.Slice(byUse, func(i, j int) bool { return byUse[i].UsedCount > byUse[j].UsedCount })
	stats.MostUsed = paginate(byUse, 0, 5)

	// matching() already returns newest-first.
	stats.Recent = paginate(all, 0, 5)

	return stats, nil
}

func (r *discountRepo) matching(f discounts.Filter) []discounts.Code {
	t := &r.s.codes
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]discounts.Code, 0)
	for _, c := range t.rows {
		if f.Code != "" && c.Code != strings.ToUpper(f.Code) {
			continue
		}
		if f.IsActive != nil && c.IsActive != *f.IsActive {
			continue
		}
		if f.ActiveAt != nil {
			if f.ActiveAt.Before(c.ValidFrom) || f.ActiveAt.After(c.ValidUntil) {
				continue
			}
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return newestFirst(
			rowMeta{out[i].ID, out[i].CreatedAt},
			rowMeta{out[j].ID, out[j].CreatedAt},
		)
	})
	return out
}
