package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/monibag/monibag/internal/models"
	"github.com/shopspring/decimal"
)

// WalletRepository reads and writes wallet rows. The forUpdate flag on the
// lookups appends FOR UPDATE so the row stays locked until the enclosing
// store transaction ends. Row locks are the only mutual exclusion around
// balances; nothing in the process guards them with a mutex.
type WalletRepository interface {
	Insert(wallet *models.Wallet, tx *sqlx.Tx) (string, error)
	GetOne(id string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error)
	GetOneByUserID(userID string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error)
	GetOneByWalletNumber(walletNumber string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error)
	UpdateBalance(id string, balance decimal.Decimal, tx *sqlx.Tx) error
}

type WalletRepositoryImpl struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) WalletRepository {
	return &WalletRepositoryImpl{db: db}
}

func (repo *WalletRepositoryImpl) Insert(wallet *models.Wallet, tx *sqlx.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO wallets (user_id, wallet_number)
		VALUES ($1, $2)
		RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query,
			wallet.UserID,
			wallet.WalletNumber,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err, "wallets_wallet_number_key") {
				return "", ErrDuplicateWalletNumber
			}
			return "", err
		}
	} else {
		err := repo.db.GetContext(ctx, &id, query,
			wallet.UserID,
			wallet.WalletNumber,
		)
		if err != nil {
			if isUniqueViolation(err, "wallets_wallet_number_key") {
				return "", ErrDuplicateWalletNumber
			}
			return "", err
		}
	}

	return id, nil
}

func (repo *WalletRepositoryImpl) GetOne(id string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error) {
	query := `
        SELECT id, user_id, wallet_number, balance, currency, status, created_at, updated_at
        FROM wallets WHERE id = $1`

	return repo.getOne(query, id, forUpdate, tx)
}

func (repo *WalletRepositoryImpl) GetOneByUserID(userID string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error) {
	query := `
        SELECT id, user_id, wallet_number, balance, currency, status, created_at, updated_at
        FROM wallets WHERE user_id = $1`

	return repo.getOne(query, userID, forUpdate, tx)
}

func (repo *WalletRepositoryImpl) GetOneByWalletNumber(walletNumber string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error) {
	query := `
        SELECT id, user_id, wallet_number, balance, currency, status, created_at, updated_at
        FROM wallets WHERE wallet_number = $1`

	return repo.getOne(query, walletNumber, forUpdate, tx)
}

// queryContext builds the context a wallet lookup runs under. Plain reads
// carry the default query timeout. Locked reads carry no deadline: the wait
// for a contended row is bounded by the store's lock-wait handling and by
// the enclosing transaction, never by an application timer.
func queryContext(forUpdate bool) (context.Context, context.CancelFunc) {
	if forUpdate {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), defaultTimeout)
}

// getOne runs a single-row wallet lookup. A missing wallet is reported
// through the found flag, not as an error.
func (repo *WalletRepositoryImpl) getOne(query, arg string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error) {
	if forUpdate {
		if tx == nil {
			return nil, false, ErrLockRequiresTx
		}
		query += ` FOR UPDATE`
	}

	ctx, cancel := queryContext(forUpdate)
	defer cancel()

	var wallet models.Wallet
	var err error

	if tx != nil {
		err = tx.GetContext(ctx, &wallet, query, arg)
	} else {
		err = repo.db.GetContext(ctx, &wallet, query, arg)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &wallet, true, nil
}

func (repo *WalletRepositoryImpl) UpdateBalance(id string, balance decimal.Decimal, tx *sqlx.Tx) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, balance, id)
	} else {
		_, err = repo.db.ExecContext(ctx, query, balance, id)
	}

	return err
}
