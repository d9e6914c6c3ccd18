package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// LedgerEntry is one leg of a transfer. Entries are append-only: they
// are written atomically with the balance updates and never mutated.
// For every TransactionID exactly two entries exist, one DEBIT and one
// CREDIT, whose amounts sum to zero.
type LedgerEntry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	EntryType     EntryType
	CreatedAt     time.Time
}

type TransferStatus string

const TransferStatusCompleted TransferStatus = "COMPLETED"

// TransferResult is what the transfer engine hands back on success.
type TransferResult struct {
	TransactionID       uuid.UUID
	Status              TransferStatus
	Amount              decimal.Decimal
	SourceBalanceBefore decimal.Decimal
	SourceBalanceAfter  decimal.Decimal
}
