package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/domain"
	"pouch/internal/repository"
	"pouch/internal/testutil"
)

func TestAccountRepository_CreateAndGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	gold := testutil.SeedAsset(t, db, "gold", "Gold Coins")
	account := testutil.SeedAccount(t, db, uuid.New(), gold.ID, domain.AccountTypeUser, decimal.NewFromInt(42))

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.UserID, got.UserID)
	assert.Equal(t, domain.AccountTypeUser, got.AccountType)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(42)))
}

func TestAccountRepository_GetByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

// A user holds at most one account per asset; re-provisioning the pair
// keeps the original row and balance.
func TestAccountRepository_CreateIsRerunnable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	gold := testutil.SeedAsset(t, db, "gold", "Gold Coins")
	userID := uuid.New()
	original := testutil.SeedAccount(t, db, userID, gold.ID, domain.AccountTypeUser, decimal.NewFromInt(10))

	dup := &domain.Account{
		ID:          uuid.New(),
		UserID:      userID,
		AssetID:     gold.ID,
		AccountType: domain.AccountTypeUser,
		Balance:     decimal.NewFromInt(999),
		CreatedAt:   original.CreatedAt,
		UpdatedAt:   original.UpdatedAt,
	}
	require.NoError(t, repo.Create(ctx, dup))

	got, err := repo.GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(10)))

	_, err = repo.GetByID(ctx, dup.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
