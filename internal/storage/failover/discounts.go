package failover

import (
	"context"

	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/storage"
)

type Discounts struct {
	health   *Health
	primary  discounts.Repository
	fallback discounts.Repository
}

func NewDiscounts(h *Health, primary, fallback discounts.Repository) *Discounts {
	return &Discounts{health: h, primary: primary, fallback: fallback}
}

func (r *Discounts) Create(ctx context.Context, c discounts.Code) (discounts.Code, error) {
	return call(r.health, "discounts.create",
		func() (discounts.Code, error) { return r.primary.Create(ctx, c) },
		func() (discounts.Code, error) { return r.fallback.Create(ctx, c) })
}

func (r *Discounts) GetByID(ctx context.Context, id string) (discounts.Code, error) {
	return call(r.health, "discounts.get",
		func() (discounts.Code, error) { return r.primary.GetByID(ctx, id) },
		func() (discounts.Code, error) { return r.fallback.GetByID(ctx, id) })
}

func (r *Discounts) GetByCode(ctx context.Context, code string) (discounts.Code, error) {
	return call(r.health, "discounts.getByCode",
		func() (discounts.Code, error) { return r.primary.GetByCode(ctx, code) },
		func() (discounts.Code, error) { return r.fallback.GetByCode(ctx, code) })
}

func (r *Discounts) List(ctx context.Context, f discounts.Filter, page storage.Page) ([]discounts.Code, int, error) {
	l, err := call(r.health, "discounts.list",
		func() (listing[discounts.Code], error) {
			items, total, err := r.primary.List(ctx, f, page)
			return listing[discounts.Code]{items, total}, err
		},
		func() (listing[discounts.Code], error) {
			items, total, err := r.fallback.List(ctx, f, page)
			return listing[discounts.Code]{items, total}, err
		})
	return l.items, l.total, err
}

func (r *Discounts) Update(ctx context.Context, id string, p discounts.Patch) (discounts.Code, error) {
	return call(r.health, "discounts.update",
		func() (discounts.Code, error) { return r.primary.Update(ctx, id, p) },
		func() (discounts.Code, error) { return r.fallback.Update(ctx, id, p) })
}

func (r *Discounts) Delete(ctx context.Context, id string) error {
	return callErr(r.health, "discounts.delete",
		func() error { return r.primary.Delete(ctx, id) },
		func() error { return r.fallback.Delete(ctx, id) })
}

func (r *Discounts) Count(ctx context.Context, f discounts.Filter) (int, error) {
	return call(r.health, "discounts.count",
		func() (int, error) { return r.primary.Count(ctx, f) },
		func() (int, error) { return r.fallback.Count(ctx, f) })
}

func (r *Discounts) Consume(ctx context.Context, id string) error {
	return callErr(r.health, "discounts.consume",
		func() error { return r.primary.Consume(ctx, id) },
		func() error { return r.fallback.Consume(ctx, id) })
}

func (r *Discounts) Release(ctx context.Context, id string) error {
	return callErr(r.health, "discounts.release",
		func() error { return r.primary.Release(ctx, id) },
		func() error { return r.fallback.Release(ctx, id) })
}

func (r *Discounts) Stats(ctx context.Context) (discounts.Stats, error) {
	return call(r.health, "discounts.stats",
		func() (discounts.Stats, error) { return r.primary.Stats(ctx) },
		func() (discounts.Stats, error) { return r.fallback.Stats(ctx) })
}
