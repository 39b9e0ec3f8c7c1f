package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	mem "pet-adoption-market/internal/adapters/storage/memory"
	pg "pet-adoption-market/internal/adapters/storage/postgres"
	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/domain/users"
	"pet-adoption-market/internal/middleware"
	"pet-adoption-market/internal/ports/auth"
	"pet-adoption-market/internal/storage/failover"
)

type Options struct {
	Log zerolog.Logger

	// Verifier may be nil; the auth middleware then runs in dev mode.
	Verifier auth.Verifier

	// DB is the primary store. Nil means fallback-only operation.
	DB *sql.DB
}

// NewRouter wires repositories, services and routes. The returned
// Health drives the recovery loop; it is nil when no primary store is
// configured.
func NewRouter(opts Options) (http.Handler, *failover.Health) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observe(opts.Log))

	store := mem.NewStore()

	var (
		health    *failover.Health
		usersRepo users.Repository
		petsRepo  pets.Repository
		codesRepo discounts.Repository
		adoptRepo adoptions.Repository
	)

	if opts.DB != nil {
		health = failover.NewHealth(pg.Probe(opts.DB), opts.Log)
		usersRepo = failover.NewUsers(health, pg.NewUsersRepo(opts.DB), store.Users())
		petsRepo = failover.NewPets(health, pg.NewPetsRepo(opts.DB), store.Pets())
		codesRepo = failover.NewDiscounts(health, pg.NewDiscountsRepo(opts.DB), store.Discounts())
		adoptRepo = failover.NewAdoptions(health, pg.NewAdoptionsRepo(opts.DB), store.Adoptions())
	} else {
		usersRepo = store.Users()
		petsRepo = store.Pets()
		codesRepo = store.Discounts()
		adoptRepo = store.Adoptions()
	}

	usersSvc := users.NewService(usersRepo)
	petsSvc := pets.NewService(petsRepo)
	adoptionsSvc := adoptions.NewService(adoptRepo, petsRepo, codesRepo)
	discountsSvc := discounts.NewService(codesRepo, petsRepo, adoptionsSvc)

	var resolver middleware.IdentityResolver
	if opts.Verifier != nil {
		gate := users.NewGate(opts.Verifier, usersRepo, opts.Log)
		resolver = &gateResolver{gate: gate}
	}
	r.Use(middleware.AuthContext(resolver))

	r.Get("/health", healthHandler(health, opts.DB != nil))
	r.Handle("/metrics", promhttp.Handler())

	users.RegisterRoutes(r, usersSvc)
	pets.RegisterRoutes(r, petsSvc)
	discounts.RegisterRoutes(r, discountsSvc)
	adoptions.RegisterRoutes(r, adoptionsSvc)

	return r, health
}

// gateResolver adapts the credential gate to the auth middleware.
type gateResolver struct {
	gate *users.Gate
}

func (g *gateResolver) Resolve(ctx context.Context, token string) (auth.Identity, error) {
	u, err := g.gate.Resolve(ctx, token)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Admin: u.IsAdmin,
	}, nil
}

func healthHandler(health *failover.Health, hasPrimary bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		switch {
		case !hasPrimary:
			body["storage"] = "fallback-only"
		case health.PrimaryUp():
			body["storage"] = "primary"
		default:
			body["storage"] = "fallback"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}
