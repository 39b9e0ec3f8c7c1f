package failover

import (
	"context"

	"pet-adoption-market/internal/domain/users"
	"pet-adoption-market/internal/storage"
)

// Users pairs the primary and fallback user repositories behind the
// users.Repository interface.
type Users struct {
	health   *Health
	primary  users.Repository
	fallback users.Repository
}

func NewUsers(h *Health, primary, fallback users.Repository) *Users {
	return &Users{health: h, primary: primary, fallback: fallback}
}

func (r *Users) Create(ctx context.Context, u users.User) (users.User, error) {
	return call(r.health, "users.create",
		func() (users.User, error) { return r.primary.Create(ctx, u) },
		func() (users.User, error) { return r.fallback.Create(ctx, u) })
}

func (r *Users) GetByID(ctx context.Context, id string) (users.User, error) {
	return call(r.health, "users.get",
		func() (users.User, error) { return r.primary.GetByID(ctx, id) },
		func() (users.User, error) { return r.fallback.GetByID(ctx, id) })
}

func (r *Users) FindOne(ctx context.Context, f users.Filter) (users.User, error) {
	return call(r.health, "users.findOne",
		func() (users.User, error) { return r.primary.FindOne(ctx, f) },
		func() (users.User, error) { return r.fallback.FindOne(ctx, f) })
}

func (r *Users) List(ctx context.Context, f users.Filter, page storage.Page) ([]users.User, int, error) {
	l, err := call(r.health, "users.list",
		func() (listing[users.User], error) {
			items, total, err := r.primary.List(ctx, f, page)
			return listing[users.User]{items, total}, err
		},
		func() (listing[users.User], error) {
			items, total, err := r.fallback.List(ctx, f, page)
			return listing[users.User]{items, total}, err
		})
	return l.items, l.total, err
}

func (r *Users) Update(ctx context.Context, id string, p users.Patch) (users.User, error) {
	return call(r.health, "users.update",
		func() (users.User, error) { return r.primary.Update(ctx, id, p) },
		func() (users.User, error) { return r.fallback.Update(ctx, id, p) })
}

func (r *Users) Delete(ctx context.Context, id string) error {
	return callErr(r.health, "users.delete",
		func() error { return r.primary.Delete(ctx, id) },
		func() error { return r.fallback.Delete(ctx, id) })
}

func (r *Users) Count(ctx context.Context, f users.Filter) (int, error) {
	return call(r.health, "users.count",
		func() (int, error) { return r.primary.Count(ctx, f) },
		func() (int, error) { return r.fallback.Count(ctx, f) })
}
