package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/monibag/monibag/internal/models"
	"github.com/shopspring/decimal"
)

// defaultHistoryLimit bounds history reads. Requests for more rows, or for
// none in particular, are clamped to it.
const defaultHistoryLimit = 50

// TransactionRepository records ledger transactions. Rows are created once
// and only their status ever changes, pending to success or failed; amount,
// type and reference are immutable after insert.
type TransactionRepository interface {
	Insert(transaction *models.Transaction, tx *sqlx.Tx) (string, error)
	GetOne(id string) (*models.Transaction, bool, error)
	GetOneByReference(reference string) (*models.Transaction, bool, error)
	GetAllByWalletID(walletID string, limit int) ([]models.Transaction, error)
	UpdateStatus(id, status string, tx *sqlx.Tx) error
	SumAmountByTypeAndStatus(walletID, transactionType, status string) (decimal.Decimal, error)
}

type TransactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

// Insert creates a transaction row and fills the server assigned id and
// created_at back into the passed struct. Status defaults to pending when
// unset.
func (repo *TransactionRepositoryImpl) Insert(transaction *models.Transaction, tx *sqlx.Tx) (string, error) {
	if !transaction.Amount.IsPositive() {
		return "", ErrNonPositiveAmount
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	status := transaction.Status
	if status == "" {
		status = models.TransactionPendingStatus
	}

	query := `
		INSERT INTO transactions (wallet_id, type, amount, reference, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	args := []any{
		transaction.WalletID,
		transaction.Type,
		transaction.Amount,
		transaction.Reference,
		status,
		transaction.Metadata,
	}

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, args...)
	} else {
		row = repo.db.QueryRowContext(ctx, query, args...)
	}

	err := row.Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "transactions_reference_key") {
			return "", ErrDuplicateReference
		}
		return "", err
	}

	transaction.Status = status

	return transaction.ID, nil
}

func (repo *TransactionRepositoryImpl) GetOne(id string) (*models.Transaction, bool, error) {
	query := `
        SELECT id, wallet_id, type, amount, reference, status, metadata, created_at, updated_at
        FROM transactions WHERE id = $1`

	return repo.getOne(query, id)
}

func (repo *TransactionRepositoryImpl) GetOneByReference(reference string) (*models.Transaction, bool, error) {
	query := `
        SELECT id, wallet_id, type, amount, reference, status, metadata, created_at, updated_at
        FROM transactions WHERE reference = $1`

	return repo.getOne(query, reference)
}

func (repo *TransactionRepositoryImpl) getOne(query, arg string) (*models.Transaction, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var transaction models.Transaction

	err := repo.db.GetContext(ctx, &transaction, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &transaction, true, nil
}

func clampHistoryLimit(limit int) int {
	if limit <= 0 || limit > defaultHistoryLimit {
		return defaultHistoryLimit
	}
	return limit
}

// GetAllByWalletID returns a wallet's transactions most recent first. The
// read takes no locks.
func (repo *TransactionRepositoryImpl) GetAllByWalletID(walletID string, limit int) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	limit = clampHistoryLimit(limit)

	var transactions []models.Transaction

	query := `
        SELECT id, wallet_id, type, amount, reference, status, metadata, created_at, updated_at
        FROM transactions WHERE wallet_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	err := repo.db.SelectContext(ctx, &transactions, query, walletID, limit)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// UpdateStatus moves a pending transaction into a terminal status. The
// WHERE clause only matches pending rows, so a transition away from
// success or failed (or an unknown id) affects nothing and surfaces as
// ErrTransactionFinalized.
func (repo *TransactionRepositoryImpl) UpdateStatus(id, status string, tx *sqlx.Tx) error {
	if status != models.TransactionSuccessStatus && status != models.TransactionFailedStatus {
		return fmt.Errorf("invalid target status %q", status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE transactions SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.ExecContext(ctx, query, status, id, models.TransactionPendingStatus)
	} else {
		result, err = repo.db.ExecContext(ctx, query, status, id, models.TransactionPendingStatus)
	}

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrTransactionFinalized
	}

	return nil
}

func (repo *TransactionRepositoryImpl) SumAmountByTypeAndStatus(walletID, transactionType, status string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var sum decimal.Decimal

	query := `
        SELECT COALESCE(SUM(amount), 0) FROM transactions
        WHERE wallet_id = $1 AND type = $2 AND status = $3`

	err := repo.db.GetContext(ctx, &sum, query, walletID, transactionType, status)
	if err != nil {
		return decimal.Zero, err
	}

	return sum, nil
}
