package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrWalletNotFound    = errors.New("user wallet not found for asset")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrSelfTransfer      = errors.New("cannot transfer to same account")
	ErrInvalidKind       = errors.New("invalid transaction type")
	ErrInvalidRequest    = errors.New("invalid request")
)
