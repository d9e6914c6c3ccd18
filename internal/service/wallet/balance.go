package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pouch/internal/domain"
)

// ResolveAccount maps (user, asset slug) to an account id. Read-only,
// no locking; the returned id is only a reference until the transfer
// transaction locks the row itself.
func (s *Service) ResolveAccount(ctx context.Context, userID uuid.UUID, assetSlug string) (uuid.UUID, error) {
	id, err := s.accounts.ResolveAccount(ctx, userID, assetSlug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ResolveAccount: %w", err)
	}
	return id, nil
}

// ListBalances returns every asset balance the user holds. Served from
// the Redis cache when one is configured; transfers invalidate the
// participants' entries on commit.
func (s *Service) ListBalances(ctx context.Context, userID uuid.UUID) ([]domain.AccountBalance, error) {
	if balances, ok := s.cache.Get(ctx, userID); ok {
		return balances, nil
	}

	balances, err := s.accounts.ListBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListBalances: %w", err)
	}

	s.cache.Set(ctx, userID, balances)
	return balances, nil
}
