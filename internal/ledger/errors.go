package ledger

import (
	"errors"

	"github.com/monibag/monibag/internal/repository"
)

var (
	// ErrInvalidAmount rejects zero and negative amounts. The check runs
	// before any data access, so a rejected call has no side effects.
	ErrInvalidAmount = repository.ErrNonPositiveAmount

	// ErrSameWalletTransfer rejects a transfer whose sender and recipient
	// are the same wallet. Checked before any locking.
	ErrSameWalletTransfer = errors.New("cannot transfer to the same wallet")

	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Store-level rejections surfaced through ledger operations.
	ErrDuplicateReference   = repository.ErrDuplicateReference
	ErrTransactionFinalized = repository.ErrTransactionFinalized

	// ErrIntegrityFailure wraps a transfer that failed after its two
	// transaction rows were created. Both legs are re-recorded with
	// status failed before it is returned.
	ErrIntegrityFailure = errors.New("transfer did not commit")
)
