package failover

import (
	"context"

	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
)

type Pets struct {
	health   *Health
	primary  pets.Repository
	fallback pets.Repository
}

func NewPets(h *Health, primary, fallback pets.Repository) *Pets {
	return &Pets{health: h, primary: primary, fallback: fallback}
}

func (r *Pets) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	return call(r.health, "pets.create",
		func() (pets.Pet, error) { return r.primary.Create(ctx, p) },
		func() (pets.Pet, error) { return r.fallback.Create(ctx, p) })
}

func (r *Pets) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return call(r.health, "pets.get",
		func() (pets.Pet, error) { return r.primary.GetByID(ctx, id) },
		func() (pets.Pet, error) { return r.fallback.GetByID(ctx, id) })
}

func (r *Pets) GetDetail(ctx context.Context, id string) (pets.Detail, error) {
	return call(r.health, "pets.getDetail",
		func() (pets.Detail, error) { return r.primary.GetDetail(ctx, id) },
		func() (pets.Detail, error) { return r.fallback.GetDetail(ctx, id) })
}

func (r *Pets) FindOne(ctx context.Context, f pets.Filter) (pets.Pet, error) {
	return call(r.health, "pets.findOne",
		func() (pets.Pet, error) { return r.primary.FindOne(ctx, f) },
		func() (pets.Pet, error) { return r.fallback.FindOne(ctx, f) })
}

func (r *Pets) List(ctx context.Context, f pets.Filter, page storage.Page) ([]pets.Pet, int, error) {
	l, err := call(r.health, "pets.list",
		func() (listing[pets.Pet], error) {
			items, total, err := r.primary.List(ctx, f, page)
			return listing[pets.Pet]{items, total}, err
		},
		func() (listing[pets.Pet], error) {
			items, total, err := r.fallback.List(ctx, f, page)
			return listing[pets.Pet]{items, total}, err
		})
	return l.items, l.total, err
}

func (r *Pets) Update(ctx context.Context, id string, p pets.Patch) (pets.Pet, error) {
	return call(r.health, "pets.update",
		func() (pets.Pet, error) { return r.primary.Update(ctx, id, p) },
		func() (pets.Pet, error) { return r.fallback.Update(ctx, id, p) })
}

func (r *Pets) Delete(ctx context.Context, id string) error {
	return callErr(r.health, "pets.delete",
		func() error { return r.primary.Delete(ctx, id) },
		func() error { return r.fallback.Delete(ctx, id) })
}

func (r *Pets) Count(ctx context.Context, f pets.Filter) (int, error) {
	return call(r.health, "pets.count",
		func() (int, error) { return r.primary.Count(ctx, f) },
		func() (int, error) { return r.fallback.Count(ctx, f) })
}
