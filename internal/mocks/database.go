package mocks

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/monibag/monibag/internal/repository"
)

// MockDatabase bundles the repository mocks behind the Database
// interface. RunInTx hands the callback a nil transaction handle,
// which the mocked repositories never dereference.
type MockDatabase struct {
	UserRepo        *MockUserRepo
	WalletRepo      *MockWalletRepo
	TransactionRepo *MockTransactionRepo
}

func NewMockDatabase() *MockDatabase {
	return &MockDatabase{
		UserRepo:        new(MockUserRepo),
		WalletRepo:      new(MockWalletRepo),
		TransactionRepo: new(MockTransactionRepo),
	}
}

func (m *MockDatabase) User() repository.UserRepository {
	return m.UserRepo
}

func (m *MockDatabase) Wallet() repository.WalletRepository {
	return m.WalletRepo
}

func (m *MockDatabase) Transaction() repository.TransactionRepository {
	return m.TransactionRepo
}

func (m *MockDatabase) Close() error {
	return nil
}

func (m *MockDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, errors.New("mock database cannot open real transactions")
}

func (m *MockDatabase) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}
