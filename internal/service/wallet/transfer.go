package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"pouch/internal/domain"
	"pouch/internal/logging"
)

// Transfer moves amount from source to dest atomically, writing a
// balanced DEBIT/CREDIT ledger pair under one fresh transaction id.
//
// Both account rows are locked in ascending id order before either
// balance is read, so concurrent transfers over the same pair always
// request locks in the same global order and cannot deadlock. Any
// failure after lock acquisition rolls the whole unit of work back;
// a half-applied transfer is never observable.
func (s *Service) Transfer(ctx context.Context, sourceID, destID uuid.UUID, amount decimal.Decimal, description string) (*domain.TransferResult, error) {
	log := logging.FromContext(ctx)

	if !amount.IsPositive() {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrInvalidAmount)
	}
	if sourceID == destID {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrSelfTransfer)
	}

	timer := prometheus.NewTimer(transferDuration)
	defer timer.ObserveDuration()

	var (
		result               *domain.TransferResult
		srcUserID, dstUserID uuid.UUID
	)

	err := s.db.RunInTx(ctx, func(tx *sql.Tx) error {
		locked, err := s.accounts.LockPair(ctx, tx, sourceID, destID)
		if err != nil {
			return fmt.Errorf("Transfer: %w", err)
		}

		source, dest := locked[sourceID], locked[destID]
		if source == nil || dest == nil {
			return fmt.Errorf("Transfer: %w", domain.ErrAccountNotFound)
		}

		// Treasury float may go negative; every other account is
		// floored at zero.
		if !source.ExemptFromFloor() && source.Balance.LessThan(amount) {
			return fmt.Errorf("Transfer: %w", domain.ErrInsufficientFunds)
		}

		newSourceBalance := source.Balance.Sub(amount)
		newDestBalance := dest.Balance.Add(amount)

		if err := s.accounts.UpdateBalance(ctx, tx, sourceID, newSourceBalance); err != nil {
			return fmt.Errorf("Transfer: update source: %w", err)
		}
		if err := s.accounts.UpdateBalance(ctx, tx, destID, newDestBalance); err != nil {
			return fmt.Errorf("Transfer: update dest: %w", err)
		}

		transactionID := uuid.New()
		now := time.Now().UTC()

		debit := &domain.LedgerEntry{
			ID:            uuid.New(),
			TransactionID: transactionID,
			AccountID:     sourceID,
			Amount:        amount.Neg(),
			BalanceAfter:  newSourceBalance,
			Description:   description,
			EntryType:     domain.EntryTypeDebit,
			CreatedAt:     now,
		}
		if err := s.ledger.Create(ctx, tx, debit); err != nil {
			return fmt.Errorf("Transfer: debit leg: %w", err)
		}

		credit := &domain.LedgerEntry{
			ID:            uuid.New(),
			TransactionID: transactionID,
			AccountID:     destID,
			Amount:        amount,
			BalanceAfter:  newDestBalance,
			Description:   description,
			EntryType:     domain.EntryTypeCredit,
			CreatedAt:     now,
		}
		if err := s.ledger.Create(ctx, tx, credit); err != nil {
			return fmt.Errorf("Transfer: credit leg: %w", err)
		}

		result = &domain.TransferResult{
			TransactionID:       transactionID,
			Status:              domain.TransferStatusCompleted,
			Amount:              amount,
			SourceBalanceBefore: source.Balance,
			SourceBalanceAfter:  newSourceBalance,
		}
		srcUserID, dstUserID = source.UserID, dest.UserID
		return nil
	})
	if err != nil {
		transfersTotal.WithLabelValues(transferOutcome(err)).Inc()
		return nil, err
	}
	transfersTotal.WithLabelValues("completed").Inc()

	s.cache.Invalidate(ctx, srcUserID, dstUserID)

	log.Info("transfer completed",
		"transaction_id", result.TransactionID,
		"source_account", sourceID,
		"dest_account", destID,
		"amount", amount,
	)

	return result, nil
}

func transferOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrSelfTransfer):
		return "rejected"
	default:
		return "error"
	}
}
