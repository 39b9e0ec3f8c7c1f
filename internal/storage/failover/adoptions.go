package failover

import (
	"context"

	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/storage"
)

type Adoptions struct {
	health   *Health
	primary  adoptions.Repository
	fallback adoptions.Repository
}

func NewAdoptions(h *Health, primary, fallback adoptions.Repository) *Adoptions {
	return &Adoptions{health: h, primary: primary, fallback: fallback}
}

func (r *Adoptions) Create(ctx context.Context, a adoptions.Application) (adoptions.Application, error) {
	return call(r.health, "adoptions.create",
		func() (adoptions.Application, error) { return r.primary.Create(ctx, a) },
		func() (adoptions.Application, error) { return r.fallback.Create(ctx, a) })
}

func (r *Adoptions) GetByID(ctx context.Context, id string) (adoptions.Application, error) {
	return call(r.health, "adoptions.get",
		func() (adoptions.Application, error) { return r.primary.GetByID(ctx, id) },
		func() (adoptions.Application, error) { return r.fallback.GetByID(ctx, id) })
}

func (r *Adoptions) FindOne(ctx context.Context, f adoptions.Filter) (adoptions.Application, error) {
	return call(r.health, "adoptions.findOne",
		func() (adoptions.Application, error) { return r.primary.FindOne(ctx, f) },
		func() (adoptions.Application, error) { return r.fallback.FindOne(ctx, f) })
}

func (r *Adoptions) List(ctx context.Context, f adoptions.Filter, page storage.Page) ([]adoptions.Application, int, error) {
	l, err := call(r.health, "adoptions.list",
		func() (listing[adoptions.Application], error) {
			items, total, err := r.primary.List(ctx, f, page)
			return listing[adoptions.Application]{items, total}, err
		},
		func() (listing[adoptions.Application], error) {
			items, total, err := r.fallback.List(ctx, f, page)
			return listing[adoptions.Application]{items, total}, err
		})
	return l.items, l.total, err
}

func (r *Adoptions) Update(ctx context.Context, id string, p adoptions.Patch) (adoptions.Application, error) {
	return call(r.health, "adoptions.update",
		func() (adoptions.Application, error) { return r.primary.Update(ctx, id, p) },
		func() (adoptions.Application, error) { return r.fallback.Update(ctx, id, p) })
}

func (r *Adoptions) Delete(ctx context.Context, id string) error {
	return callErr(r.health, "adoptions.delete",
		func() error { return r.primary.Delete(ctx, id) },
		func() error { return r.fallback.Delete(ctx, id) })
}

func (r *Adoptions) Count(ctx context.Context, f adoptions.Filter) (int, error) {
	return call(r.health, "adoptions.count",
		func() (int, error) { return r.primary.Count(ctx, f) },
		func() (int, error) { return r.fallback.Count(ctx, f) })
}
