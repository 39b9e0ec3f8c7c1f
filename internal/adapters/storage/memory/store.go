// Package memory is the fallback storage adapter: one ordered table
// per entity, ids minted from per-table integer sequences (never
// reused), linear-scan filtering. Nothing here survives a restart;
// the store's lifetime is the process lifetime.
package memory

import (
	"strconv"
	"sync"
	"time"

	"pet-adoption-market/internal/domain/adoptions"
	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/domain/users"
)

// Store owns the fallback tables. Construct one per process and
// inject it; there is deliberately no package-level instance.
type Store struct {
	users     table[users.User]
	pets      table[pets.Pet]
	codes     table[discounts.Code]
	adoptions table[adoptions.Application]
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     newTable[users.User](),
		pets:      newTable[pets.Pet](),
		codes:     newTable[discounts.Code](),
		adoptions: newTable[adoptions.Application](),
		now:       time.Now,
	}
}

func (s *Store) Users() users.Repository         { return &userRepo{s} }
func (s *Store) Pets() pets.Repository           { return &petRepo{s} }
func (s *Store) Discounts() discounts.Repository { return &discountRepo{s} }
func (s *Store) Adoptions() adoptions.Repository { return &adoptionRepo{s} }

// table is a mutex-guarded map plus the id sequence for one entity
// type. The increment-and-insert id assignment is only safe under the
// table lock, which is why every operation takes it.
type table[T any] struct {
	mu   *sync.RWMutex
	rows map[string]T
	seq  uint64
}

func newTable[T any]() table[T] {
	return table[T]{
		mu:   &sync.RWMutex{},
		rows: make(map[string]T),
	}
}

func (t *table[T]) nextID() string {
	t.seq++
	return strconv.FormatUint(t.seq, 10)
}

// sortable is what the shared newest-first ordering needs.
type rowMeta struct {
	id        string
	createdAt time.Time
}

// newestFirst orders ids by creation time descending; the numeric id
// breaks ties so pagination is stable within this backend.
func newestFirst(a, b rowMeta) bool {
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	ai, _ := strconv.ParseUint(a.id, 10, 64)
	bi, _ := strconv.ParseUint(b.id, 10, 64)
	return ai > bi
}

func paginate[T any](items []T, offset, size int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
