package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pouch/internal/domain"
	"pouch/internal/repository"
)

func SeedAsset(t *testing.T, db *sql.DB, slug, name string) *domain.Asset {
	t.Helper()

	a := &domain.Asset{
		ID:        uuid.New(),
		Slug:      slug,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := repository.NewAssetRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("seed asset %s: %v", slug, err)
	}
	return a
}

func SeedAccount(t *testing.T, db *sql.DB, userID, assetID uuid.UUID, accountType domain.AccountType, balance decimal.Decimal) *domain.Account {
	t.Helper()

	now := time.Now().UTC()
	a := &domain.Account{
		ID:          uuid.New(),
		UserID:      userID,
		AssetID:     assetID,
		AccountType: accountType,
		Balance:     balance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repository.NewAccountRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("seed %s account for user %s: %v", accountType, userID, err)
	}
	return a
}

func SeedTreasury(t *testing.T, db *sql.DB, assetID uuid.UUID, balance decimal.Decimal) *domain.Account {
	t.Helper()
	return SeedAccount(t, db, uuid.New(), assetID, domain.AccountTypeTreasury, balance)
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	account, err := repository.NewAccountRepository(db).GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return account.Balance
}

func CountLedgerEntries(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries for account %s: %v", accountID, err)
	}
	return count
}

// SumLedgerEntries totals every entry amount for a transaction; a
// committed transfer must always sum to zero.
func SumLedgerEntries(t *testing.T, db *sql.DB, transactionID uuid.UUID) decimal.Decimal {
	t.Helper()

	var sum decimal.Decimal
	err := db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE transaction_id = $1`,
		transactionID,
	).Scan(&sum)
	if err != nil {
		t.Fatalf("sum ledger entries for transaction %s: %v", transactionID, err)
	}
	return sum
}
