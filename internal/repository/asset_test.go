package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/domain"
	"pouch/internal/repository"
	"pouch/internal/testutil"
)

func TestAssetRepository_CreateAndGetBySlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAssetRepository(db)
	ctx := context.Background()

	gold := &domain.Asset{
		ID:        uuid.New(),
		Slug:      "gold",
		Name:      "Gold Coins",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, gold))

	got, err := repo.GetBySlug(ctx, "gold")
	require.NoError(t, err)
	assert.Equal(t, gold.ID, got.ID)
	assert.Equal(t, "Gold Coins", got.Name)
}

// Provisioning the same slug twice keeps the original row, so the
// seeder can run against an already-seeded database.
func TestAssetRepository_CreateIsRerunnable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAssetRepository(db)
	ctx := context.Background()

	first := &domain.Asset{ID: uuid.New(), Slug: "gems", Name: "Gems", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, first))

	dup := &domain.Asset{ID: uuid.New(), Slug: "gems", Name: "Shiny Gems", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, dup))

	got, err := repo.GetBySlug(ctx, "gems")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Gems", got.Name)
}

func TestAssetRepository_GetBySlugNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAssetRepository(db)

	_, err := repo.GetBySlug(context.Background(), "unobtanium")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
