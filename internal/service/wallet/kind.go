package wallet

import (
	"fmt"

	"github.com/google/uuid"

	"pouch/internal/domain"
)

// TransactionKind is the closed set of value-moving operations the
// boundary accepts. Each kind resolves to a (source, dest, description)
// triple before the transfer engine is invoked; the engine itself is
// agnostic to kind.
type TransactionKind string

const (
	KindTopup TransactionKind = "TOPUP"
	KindBonus TransactionKind = "BONUS"
	KindSpend TransactionKind = "SPEND"
)

func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindTopup, KindBonus, KindSpend:
		return TransactionKind(s), nil
	default:
		return "", fmt.Errorf("ParseTransactionKind: %q: %w", s, domain.ErrInvalidKind)
	}
}

type TransferLegs struct {
	SourceID    uuid.UUID
	DestID      uuid.UUID
	Description string
}

// Legs maps the kind onto the user account and the treasury
// counterparty. Topups and bonuses credit the user from treasury;
// spends debit the user back into treasury.
func (k TransactionKind) Legs(userAccountID, treasuryID uuid.UUID) (TransferLegs, error) {
	switch k {
	case KindTopup:
		return TransferLegs{SourceID: treasuryID, DestID: userAccountID, Description: "Topup via Purchase"}, nil
	case KindBonus:
		return TransferLegs{SourceID: treasuryID, DestID: userAccountID, Description: "System Bonus"}, nil
	case KindSpend:
		return TransferLegs{SourceID: userAccountID, DestID: treasuryID, Description: "In-game Purchase/Spend"}, nil
	default:
		return TransferLegs{}, fmt.Errorf("Legs: %q: %w", k, domain.ErrInvalidKind)
	}
}
