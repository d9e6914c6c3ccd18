package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pouch/internal/domain"
)

const accountColumns = `id, user_id, asset_id, account_type, balance, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

// ResolveAccount maps (user, asset slug) to the account id the transfer
// engine operates on.
func (r *AccountRepository) ResolveAccount(ctx context.Context, userID uuid.UUID, assetSlug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT a.id FROM accounts a
		JOIN assets ast ON a.asset_id = ast.id
		WHERE a.user_id = $1 AND ast.slug = $2`,
		userID, assetSlug,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("ResolveAccount: %w", domain.ErrWalletNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("ResolveAccount: %w", err)
	}
	return id, nil
}

func (r *AccountRepository) ListBalances(ctx context.Context, userID uuid.UUID) ([]domain.AccountBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.balance, ast.slug, ast.name
		FROM accounts a
		JOIN assets ast ON a.asset_id = ast.id
		WHERE a.user_id = $1
		ORDER BY ast.slug`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListBalances: %w", err)
	}
	defer rows.Close()

	var balances []domain.AccountBalance
	for rows.Next() {
		var b domain.AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Balance, &b.AssetSlug, &b.AssetName); err != nil {
			return nil, fmt.Errorf("ListBalances: scan: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListBalances: rows: %w", err)
	}
	return balances, nil
}

// LockPair takes exclusive row locks on both accounts in one request,
// in ascending id order. Every code path that locks two accounts goes
// through here; the fixed global order is what makes deadlock
// structurally impossible. Returns domain.ErrAccountNotFound unless
// both rows exist.
func (r *AccountRepository) LockPair(ctx context.Context, tx *sql.Tx, first, second uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE id IN ($1, $2) ORDER BY id FOR UPDATE`,
		first, second,
	)
	if err != nil {
		return nil, fmt.Errorf("LockPair: %w", err)
	}
	defer rows.Close()

	locked := make(map[uuid.UUID]*domain.Account, 2)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("LockPair: scan: %w", err)
		}
		locked[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LockPair: rows: %w", err)
	}

	if len(locked) != 2 {
		return nil, fmt.Errorf("LockPair: %w", domain.ErrAccountNotFound)
	}
	return locked, nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1, updated_at = now() WHERE id = $2`,
		newBalance, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrAccountNotFound)
	}
	return nil
}

// Create provisions an account. An existing (user, asset) pair is left
// untouched, so provisioning can run repeatedly.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, asset_id, account_type, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, asset_id) DO NOTHING`,
		account.ID, account.UserID, account.AssetID, account.AccountType,
		account.Balance, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.UserID, &a.AssetID, &a.AccountType,
		&a.Balance, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
