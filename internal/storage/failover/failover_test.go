package failover_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pet-adoption-market/internal/adapters/storage/memory"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/storage"
	"pet-adoption-market/internal/storage/failover"
)

// brokenPets simulates a primary whose backend is down: every call
// fails with an infrastructure error.
type brokenPets struct {
	calls int32
}

func (b *brokenPets) fail(op string) error {
	atomic.AddInt32(&b.calls, 1)
	return storage.Infra(op, errors.New("connection refused"))
}

func (b *brokenPets) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	return pets.Pet{}, b.fail("pets.create")
}

func (b *brokenPets) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return pets.Pet{}, b.fail("pets.get")
}

func (b *brokenPets) GetDetail(ctx context.Context, id string) (pets.Detail, error) {
	return pets.Detail{}, b.fail("pets.getDetail")
}

func (b *brokenPets) FindOne(ctx context.Context, f pets.Filter) (pets.Pet, error) {
	return pets.Pet{}, b.fail("pets.findOne")
}

func (b *brokenPets) List(ctx context.Context, f pets.Filter, page storage.Page) ([]pets.Pet, int, error) {
	return nil, 0, b.fail("pets.list")
}

func (b *brokenPets) Update(ctx context.Context, id string, p pets.Patch) (pets.Pet, error) {
	return pets.Pet{}, b.fail("pets.update")
}

func (b *brokenPets) Delete(ctx context.Context, id string) error {
	return b.fail("pets.delete")
}

func (b *brokenPets) Count(ctx context.Context, f pets.Filter) (int, error) {
	return 0, b.fail("pets.count")
}

func newHealth() *failover.Health {
	return failover.NewHealth(nil, zerolog.Nop())
}

func TestFailover_RetriesOnFallback(t *testing.T) {
	ctx := context.Background()

	broken := &brokenPets{}
	store := memory.NewStore()
	health := newHealth()
	repo := failover.NewPets(health, broken, store.Pets())

	// The primary blows up; the same create must land on the fallback
	// and the caller must never see the infrastructure error.
	created, err := repo.Create(ctx, pets.Pet{OwnerID: "o1", Name: "Rex", Type: pets.TypeDog, Breed: "mixed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create returned no id")
	}
	if health.PrimaryUp() {
		t.Fatal("primary still marked up after infra error")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after failover: %v", err)
	}
	if got.Name != "Rex" {
		t.Fatalf("got %q, want Rex", got.Name)
	}

	// Once down, the primary is not called again.
	calls := atomic.LoadInt32(&broken.calls)
	if _, _, err := repo.List(ctx, pets.Filter{Type: pets.TypeDog}, storage.Page{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if atomic.LoadInt32(&broken.calls) != calls {
		t.Fatal("benched primary received a call")
	}
}

func TestFailover_BusinessErrorsPassThrough(t *testing.T) {
	ctx := context.Background()

	store := memory.NewStore()
	health := newHealth()

	// Healthy primary (another memory store); the fallback must not
	// be consulted for a plain not-found.
	primary := memory.NewStore()
	repo := failover.NewPets(health, primary.Pets(), store.Pets())

	_, err := repo.GetByID(ctx, "42")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if !health.PrimaryUp() {
		t.Fatal("not-found flipped the health state")
	}
}

func TestHealth_RecoveryProbe(t *testing.T) {
	var healthy atomic.Bool

	probe := func(ctx context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("still down")
	}

	h := failover.NewHealth(probe, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.CheckNow(ctx)
	if h.PrimaryUp() {
		t.Fatal("failed probe left primary up")
	}

	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, 5*time.Millisecond) }()

	healthy.Store(true)

	deadline := time.After(2 * time.Second)
	for !h.PrimaryUp() {
		select {
		case <-deadline:
			t.Fatal("primary never recovered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("run returned %v", err)
	}
}

func TestHealth_ZeroIntervalDisablesRecovery(t *testing.T) {
	h := newHealth()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, 0) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not stop on cancel")
	}
}
