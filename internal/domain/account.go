package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeUser     AccountType = "user"
	AccountTypeTreasury AccountType = "treasury"
)

// Account is a per-user, per-asset balance holder. Balances are mutated
// only inside a transfer transaction while the row lock is held.
type Account struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AssetID     uuid.UUID
	AccountType AccountType
	Balance     decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Treasury accounts may run a negative balance: they are pre-funded
// float acting as the counterparty for topups, bonuses and spends.
func (a *Account) ExemptFromFloor() bool {
	return a.AccountType == AccountTypeTreasury
}

type Asset struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	CreatedAt time.Time
}

// AccountBalance is the read-model row returned by balance listings.
type AccountBalance struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
	AssetSlug string
	AssetName string
}
