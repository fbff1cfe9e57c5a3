// Package ledger owns every balance mutation in the system. Handlers and
// workers never change a balance directly; they go through the operations
// here, which lock wallet rows in a fixed order and commit each balance
// update together with its transaction records, or not at all.
package ledger

import (
	dctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/models"
	"github.com/monibag/monibag/internal/repository"
)

type Ledger struct {
	db     repository.Database
	logger *slog.Logger
}

func New(db repository.Database, logger *slog.Logger) *Ledger {
	return &Ledger{
		db:     db,
		logger: logger,
	}
}

// TransferResult carries both legs of a transfer and, when it committed,
// the wallets as they stand after the mutation.
type TransferResult struct {
	Reference         string
	SenderWallet      *models.Wallet
	RecipientWallet   *models.Wallet
	DebitTransaction  *models.Transaction
	CreditTransaction *models.Transaction
}

// Credit applies a pre-created pending transaction to a wallet. The
// balance update and the status transition to success commit in one store
// transaction; if anything fails the rollback leaves the transaction
// pending, so the caller can retry the credit later with the same record.
func (l *Ledger) Credit(ctx dctx.Context, walletID, transactionID string) (*models.Wallet, error) {
	transaction, found, err := l.db.Transaction().GetOne(transactionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrTransactionNotFound
	}

	if transaction.Status != models.TransactionPendingStatus {
		return nil, ErrTransactionFinalized
	}

	if transaction.WalletID != walletID {
		return nil, fmt.Errorf("transaction %s does not belong to wallet %s", transactionID, walletID)
	}

	if !transaction.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var wallet *models.Wallet

	err = l.db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		locked, found, err := l.db.Wallet().GetOne(walletID, true, tx)
		if err != nil {
			return err
		}
		if !found {
			return ErrWalletNotFound
		}

		newBalance := locked.Balance.Add(transaction.Amount)

		if err := l.db.Wallet().UpdateBalance(locked.ID, newBalance, tx); err != nil {
			return err
		}

		if err := l.db.Transaction().UpdateStatus(transaction.ID, models.TransactionSuccessStatus, tx); err != nil {
			return err
		}

		locked.Balance = newBalance
		wallet = locked

		return nil
	})
	if err != nil {
		return nil, err
	}

	transaction.Status = models.TransactionSuccessStatus

	l.logger.Info("wallet credited",
		"wallet_id", wallet.ID,
		"reference", transaction.Reference,
		"amount", transaction.Amount.String(),
		"request_id", context.ContextGetRequestID(ctx),
	)

	return wallet, nil
}

// Transfer moves amount between the wallets identified by the two wallet
// numbers. Both legs are recorded before any balance changes, and the
// debit, credit and both status transitions commit in one store
// transaction. When the mutation fails after the legs were recorded, the
// rollback discards them and both are re-recorded with status failed; the
// returned error wraps ErrIntegrityFailure and the result carries the
// failed legs so callers can report them.
func (l *Ledger) Transfer(ctx dctx.Context, senderNumber, recipientNumber string, amount decimal.Decimal) (*TransferResult, error) {
	// Step 1: validations that need no locks. Failing here leaves no
	// trace in the store.
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if senderNumber == recipientNumber {
		return nil, ErrSameWalletTransfer
	}

	reference := NewTransferReference()

	var (
		result  TransferResult
		debit   *models.Transaction
		credit  *models.Transaction
		created bool
	)

	err := l.db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		// Step 2: lock both rows in ascending wallet-number order, no
		// matter which direction the money moves. Crossing transfers
		// take their locks in the same order, which is what rules out
		// deadlock between them.
		ordered := []string{senderNumber, recipientNumber}
		slices.Sort(ordered)

		firstWallet, found, err := l.db.Wallet().GetOneByWalletNumber(ordered[0], true, tx)
		if err != nil {
			return err
		}
		if !found {
			return ErrWalletNotFound
		}

		secondWallet, found, err := l.db.Wallet().GetOneByWalletNumber(ordered[1], true, tx)
		if err != nil {
			return err
		}
		if !found {
			return ErrWalletNotFound
		}

		// Step 3: work out which locked row is which. Lock order says
		// nothing about the direction of the transfer.
		senderWallet, recipientWallet := firstWallet, secondWallet
		if senderWallet.WalletNumber != senderNumber {
			senderWallet, recipientWallet = secondWallet, firstWallet
		}

		// Step 4: the sufficiency check only counts while the sender row
		// is locked.
		if senderWallet.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		// Step 5: record both legs as pending before touching balances.
		debit = &models.Transaction{
			WalletID:  senderWallet.ID,
			Type:      models.TransactionTypeTransferOut,
			Amount:    amount,
			Reference: reference + TransferOutSuffix,
			Metadata:  models.Metadata{"recipient_wallet": recipientWallet.WalletNumber},
		}

		if _, err := l.db.Transaction().Insert(debit, tx); err != nil {
			return err
		}

		credit = &models.Transaction{
			WalletID:  recipientWallet.ID,
			Type:      models.TransactionTypeTransferIn,
			Amount:    amount,
			Reference: reference + TransferInSuffix,
			Metadata:  models.Metadata{"sender_wallet": senderWallet.WalletNumber},
		}

		if _, err := l.db.Transaction().Insert(credit, tx); err != nil {
			return err
		}

		created = true

		// Step 6: move the money and settle both legs.
		newSenderBalance := senderWallet.Balance.Sub(amount)
		newRecipientBalance := recipientWallet.Balance.Add(amount)

		if err := l.db.Wallet().UpdateBalance(senderWallet.ID, newSenderBalance, tx); err != nil {
			return err
		}

		if err := l.db.Wallet().UpdateBalance(recipientWallet.ID, newRecipientBalance, tx); err != nil {
			return err
		}

		if err := l.db.Transaction().UpdateStatus(debit.ID, models.TransactionSuccessStatus, tx); err != nil {
			return err
		}

		if err := l.db.Transaction().UpdateStatus(credit.ID, models.TransactionSuccessStatus, tx); err != nil {
			return err
		}

		senderWallet.Balance = newSenderBalance
		recipientWallet.Balance = newRecipientBalance

		result.SenderWallet = senderWallet
		result.RecipientWallet = recipientWallet

		return nil
	})

	result.Reference = reference
	result.DebitTransaction = debit
	result.CreditTransaction = credit

	if err != nil {
		if created {
			// The rollback took the pending rows with it; keep the audit
			// trail by re-recording both legs as failed.
			l.recordFailedTransfer(debit, credit)

			l.logger.Error("transfer failed after legs were recorded",
				"reference", reference,
				"error", err.Error(),
				"request_id", context.ContextGetRequestID(ctx),
			)

			return &result, fmt.Errorf("%w: %v", ErrIntegrityFailure, err)
		}
		return nil, err
	}

	debit.Status = models.TransactionSuccessStatus
	credit.Status = models.TransactionSuccessStatus

	l.logger.Info("transfer committed",
		"reference", reference,
		"amount", amount.String(),
		"sender_wallet", result.SenderWallet.WalletNumber,
		"recipient_wallet", result.RecipientWallet.WalletNumber,
		"request_id", context.ContextGetRequestID(ctx),
	)

	return &result, nil
}

// recordFailedTransfer writes both legs of a rolled-back transfer with
// status failed, together in their own short store transaction. The
// request context may already be canceled or timed out at this point, so
// the write runs on a fresh one. Best effort: a failure here is logged,
// not surfaced over the original error.
func (l *Ledger) recordFailedTransfer(debit, credit *models.Transaction) {
	ctx, cancel := dctx.WithTimeout(dctx.Background(), 10*time.Second)
	defer cancel()

	debit.Status = models.TransactionFailedStatus
	credit.Status = models.TransactionFailedStatus

	err := l.db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := l.db.Transaction().Insert(debit, tx); err != nil {
			return err
		}

		if _, err := l.db.Transaction().Insert(credit, tx); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		l.logger.Error("could not record failed transfer legs",
			"reference", debit.Reference,
			"error", err.Error(),
		)
	}
}

// Transactions returns the wallet's history, most recent first. Plain
// read, no locks taken.
func (l *Ledger) Transactions(ctx dctx.Context, walletID string, limit int) ([]models.Transaction, error) {
	return l.db.Transaction().GetAllByWalletID(walletID, limit)
}

// ReconciliationReport compares a wallet's stored balance with the signed
// sum of its successful transactions.
type ReconciliationReport struct {
	WalletID        string          `json:"wallet_id"`
	WalletNumber    string          `json:"wallet_number"`
	Balance         decimal.Decimal `json:"balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Balanced        bool            `json:"balanced"`
}

// Reconcile recomputes the wallet's balance from its successful
// transactions: deposits plus incoming transfers, minus outgoing
// transfers. A mismatch means some mutation bypassed the ledger.
func (l *Ledger) Reconcile(ctx dctx.Context, walletID string) (*ReconciliationReport, error) {
	wallet, found, err := l.db.Wallet().GetOne(walletID, false, nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrWalletNotFound
	}

	deposits, err := l.db.Transaction().SumAmountByTypeAndStatus(walletID, models.TransactionTypeDeposit, models.TransactionSuccessStatus)
	if err != nil {
		return nil, err
	}

	transfersIn, err := l.db.Transaction().SumAmountByTypeAndStatus(walletID, models.TransactionTypeTransferIn, models.TransactionSuccessStatus)
	if err != nil {
		return nil, err
	}

	transfersOut, err := l.db.Transaction().SumAmountByTypeAndStatus(walletID, models.TransactionTypeTransferOut, models.TransactionSuccessStatus)
	if err != nil {
		return nil, err
	}

	computed := deposits.Add(transfersIn).Sub(transfersOut)

	report := &ReconciliationReport{
		WalletID:        wallet.ID,
		WalletNumber:    wallet.WalletNumber,
		Balance:         wallet.Balance,
		ComputedBalance: computed,
		Balanced:        wallet.Balance.Equal(computed),
	}

	if !report.Balanced {
		l.logger.Error("wallet failed reconciliation",
			"wallet_id", wallet.ID,
			"balance", wallet.Balance.String(),
			"computed_balance", computed.String(),
			"request_id", context.ContextGetRequestID(ctx),
		)
	}

	return report, nil
}
