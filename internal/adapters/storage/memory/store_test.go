package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-adoption-market/internal/domain/discounts"
	"pet-adoption-market/internal/domain/pets"
	"pet-adoption-market/internal/domain/users"
	"pet-adoption-market/internal/storage"
)

func TestUsers_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()

	created, err := repo.Create(ctx, users.User{
		Name:           "Ana",
		Email:          "ana@example.com",
		CredentialHash: "hash",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	byEmail, err := repo.FindOne(ctx, users.Filter{Email: "ANA@example.com"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()

	_, err := repo.Create(ctx, users.User{Name: "Ana", Email: "ana@example.com", CredentialHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, users.User{Name: "Other", Email: "ana@example.com", CredentialHash: "h"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestUsers_ForeignIDSpace(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()

	// UUIDs belong to the primary store; the fallback must answer a
	// clean not-found instead of scanning.
	_, err := repo.GetByID(ctx, "2f5bb1a8-73d5-4bcb-8b77-7a3ec79cfb9f")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPets_ListNewestFirstAndPaginate(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Pets()

	for i := 0; i < 25; i++ {
		_, err := repo.Create(ctx, pets.Pet{
			OwnerID: "owner-1",
			Name:    fmt.Sprintf("pet-%02d", i),
			Type:    pets.TypeDog,
			Breed:   "mixed",
		})
		require.NoError(t, err)
	}

	page1, total, err := repo.List(ctx, pets.Filter{}, storage.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, page1, 10)
	assert.Equal(t, "pet-24", page1[0].Name)

	info := storage.NewPageInfo(storage.Page{Number: 1, Size: 10}, total)
	assert.True(t, info.HasNextPage)
	assert.False(t, info.HasPrevPage)
	assert.Equal(t, 3, info.TotalPages)

	page3, _, err := repo.List(ctx, pets.Filter{}, storage.Page{Number: 3, Size: 10})
	require.NoError(t, err)
	require.Len(t, page3, 5)
	assert.Equal(t, "pet-00", page3[4].Name)

	info = storage.NewPageInfo(storage.Page{Number: 3, Size: 10}, total)
	assert.False(t, info.HasNextPage)
	assert.True(t, info.HasPrevPage)
}

func TestPets_FilterAndSearch(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Pets()

	_, err := repo.Create(ctx, pets.Pet{OwnerID: "o", Name: "Rex", Type: pets.TypeDog, Breed: "Labrador Retriever", Description: "friendly"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, pets.Pet{OwnerID: "o", Name: "Whiskers", Type: pets.TypeCat, Breed: "Siamese", Description: "calm"})
	require.NoError(t, err)

	dogs, total, err := repo.List(ctx, pets.Filter{Type: pets.TypeDog}, storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, dogs, 1)
	assert.Equal(t, "Rex", dogs[0].Name)

	byBreed, _, err := repo.List(ctx, pets.Filter{Breed: "labrador"}, storage.Page{})
	require.NoError(t, err)
	require.Len(t, byBreed, 1)

	found, _, err := repo.List(ctx, pets.Filter{Search: "siamese"}, storage.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Whiskers", found[0].Name)
}

func TestPets_GetDetailExpandsOwner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	owner, err := store.Users().Create(ctx, users.User{
		Name:           "Ana",
		Email:          "ana@example.com",
		CredentialHash: "secret-hash",
	})
	require.NoError(t, err)

	p, err := store.Pets().Create(ctx, pets.Pet{OwnerID: owner.ID, Name: "Rex", Type: pets.TypeDog, Breed: "mixed"})
	require.NoError(t, err)

	d, err := store.Pets().GetDetail(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Owner)
	assert.Equal(t, "Ana", d.Owner.Name)

	// Orphaned owner reference: projection is nil, not an error.
	orphan, err := store.Pets().Create(ctx, pets.Pet{OwnerID: "999", Name: "Stray", Type: pets.TypeCat, Breed: "mixed"})
	require.NoError(t, err)

	d, err = store.Pets().GetDetail(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Nil(t, d.Owner)
}

func TestDiscounts_ConsumeToLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Discounts()

	limit := 2
	c, err := repo.Create(ctx, discounts.Code{
		Code:       "WELCOME10",
		Name:       "Welcome",
		Type:       discounts.TypeFixedAmount,
		Value:      10,
		UsageLimit: &limit,
		IsActive:   true,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Consume(ctx, c.ID))
	require.NoError(t, repo.Consume(ctx, c.ID))

	err = repo.Consume(ctx, c.ID)
	assert.ErrorIs(t, err, discounts.ErrExhausted)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsedCount)

	require.NoError(t, repo.Release(ctx, c.ID))
	require.NoError(t, repo.Consume(ctx, c.ID))
}

func TestDiscounts_GetByCodeCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Discounts()

	_, err := repo.Create(ctx, discounts.Code{
		Code:     "SUMMER25",
		Name:     "Summer",
		Type:     discounts.TypePercentage,
		Value:    25,
		IsActive: true,
	})
	require.NoError(t, err)

	got, err := repo.GetByCode(ctx, "summer25")
	require.NoError(t, err)
	assert.Equal(t, "SUMMER25", got.Code)

	_, err = repo.GetByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
