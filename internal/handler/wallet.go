package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pouch/internal/domain"
	"pouch/internal/logging"
	"pouch/internal/service/wallet"
)

type walletService interface {
	Transfer(ctx context.Context, sourceID, destID uuid.UUID, amount decimal.Decimal, description string) (*domain.TransferResult, error)
	ResolveAccount(ctx context.Context, userID uuid.UUID, assetSlug string) (uuid.UUID, error)
	ListBalances(ctx context.Context, userID uuid.UUID) ([]domain.AccountBalance, error)
	GetTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.LedgerEntry, error)
	GetAccountEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
}

type WalletHandler struct {
	wallet     walletService
	treasuryID uuid.UUID
}

func NewWalletHandler(svc walletService, treasuryID uuid.UUID) *WalletHandler {
	return &WalletHandler{wallet: svc, treasuryID: treasuryID}
}

type transactRequest struct {
	UserID    string          `json:"user_id"`
	AssetSlug string          `json:"asset_slug"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
}

func (r transactRequest) Validate() []FieldError {
	var errs []FieldError

	if r.UserID == "" {
		errs = append(errs, FieldError{Field: "user_id", Message: "required"})
	} else if _, err := uuid.Parse(r.UserID); err != nil {
		errs = append(errs, FieldError{Field: "user_id", Message: "must be a valid uuid"})
	}

	if r.AssetSlug == "" {
		errs = append(errs, FieldError{Field: "asset_slug", Message: "required"})
	}

	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if _, err := wallet.ParseTransactionKind(r.Type); err != nil {
		errs = append(errs, FieldError{Field: "type", Message: "must be TOPUP, BONUS, or SPEND"})
	}

	return errs
}

type transferResultDTO struct {
	TransactionID       uuid.UUID       `json:"transaction_id"`
	Status              string          `json:"status"`
	Amount              decimal.Decimal `json:"amount"`
	SourceBalanceBefore decimal.Decimal `json:"source_balance_before"`
	SourceBalanceAfter  decimal.Decimal `json:"source_balance_after"`
}

func toTransferResultDTO(res *domain.TransferResult) transferResultDTO {
	return transferResultDTO{
		TransactionID:       res.TransactionID,
		Status:              string(res.Status),
		Amount:              res.Amount,
		SourceBalanceBefore: res.SourceBalanceBefore,
		SourceBalanceAfter:  res.SourceBalanceAfter,
	}
}

type balanceDTO struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	AssetSlug string          `json:"asset_slug"`
	AssetName string          `json:"asset_name"`
}

type ledgerEntryDTO struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	Type          string          `json:"type"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toLedgerEntryDTOs(entries []domain.LedgerEntry) []ledgerEntryDTO {
	dtos := make([]ledgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ledgerEntryDTO{
			ID:            e.ID,
			TransactionID: e.TransactionID,
			AccountID:     e.AccountID,
			Amount:        e.Amount,
			BalanceAfter:  e.BalanceAfter,
			Description:   e.Description,
			Type:          string(e.EntryType),
			CreatedAt:     e.CreatedAt,
		}
	}
	return dtos
}

// Transact resolves the user's wallet and the transaction kind to a
// (source, dest, description) triple, then invokes the transfer engine.
// The idempotency middleware wraps this route; a request without a key
// never reaches it.
func (h *WalletHandler) Transact(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req transactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	userID := uuid.MustParse(req.UserID)
	kind, err := wallet.ParseTransactionKind(req.Type)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	accountID, err := h.wallet.ResolveAccount(r.Context(), userID, req.AssetSlug)
	if err != nil {
		log.Warn("wallet resolution failed", "error", err, "user_id", userID, "asset", req.AssetSlug)
		RespondDomainError(w, err)
		return
	}

	legs, err := kind.Legs(accountID, h.treasuryID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	result, err := h.wallet.Transfer(r.Context(), legs.SourceID, legs.DestID, req.Amount, legs.Description)
	if err != nil {
		log.Warn("transfer failed", "error", err, "user_id", userID, "kind", kind)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransferResultDTO(result))
}

func (h *WalletHandler) Balances(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	balances, err := h.wallet.ListBalances(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list balances", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]balanceDTO, len(balances))
	for i, b := range balances {
		dtos[i] = balanceDTO{
			AccountID: b.AccountID,
			Balance:   b.Balance,
			AssetSlug: b.AssetSlug,
			AssetName: b.AssetName,
		}
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *WalletHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	entries, err := h.wallet.GetTransaction(r.Context(), transactionID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("transaction lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toLedgerEntryDTOs(entries))
}

func (h *WalletHandler) AccountEntries(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, total, err := h.wallet.GetAccountEntries(r.Context(), accountID, limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list account entries", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"entries": toLedgerEntryDTOs(entries),
		"total":   total,
	})
}
