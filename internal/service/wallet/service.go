package wallet

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pouch/internal/domain"
)

type txRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type accountRepo interface {
	LockPair(ctx context.Context, tx *sql.Tx, first, second uuid.UUID) (map[uuid.UUID]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal) error
	ResolveAccount(ctx context.Context, userID uuid.UUID, assetSlug string) (uuid.UUID, error)
	ListBalances(ctx context.Context, userID uuid.UUID) ([]domain.AccountBalance, error)
}

type ledgerRepo interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]domain.LedgerEntry, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
}

type Service struct {
	db       txRunner
	accounts accountRepo
	ledger   ledgerRepo
	cache    *BalanceCache
}

// NewService wires the transfer engine. cache may be nil when Redis is
// not configured.
func NewService(db txRunner, accounts accountRepo, ledger ledgerRepo, cache *BalanceCache) *Service {
	return &Service{
		db:       db,
		accounts: accounts,
		ledger:   ledger,
		cache:    cache,
	}
}

// GetTransaction returns both legs of a committed transfer.
func (s *Service) GetTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.LedgerEntry, error) {
	entries, err := s.ledger.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrNotFound
	}
	return entries, nil
}

// GetAccountEntries returns a page of an account's statement, newest
// first, along with the total entry count.
func (s *Service) GetAccountEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.GetByAccountID(ctx, accountID, limit, offset)
}
