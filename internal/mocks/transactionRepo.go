package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/monibag/monibag/internal/models"
)

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Insert(transaction *models.Transaction, tx *sqlx.Tx) (string, error) {
	args := m.Called(transaction, tx)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionRepo) GetOne(id string) (*models.Transaction, bool, error) {
	args := m.Called(id)
	return args.Get(0).(*models.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockTransactionRepo) GetOneByReference(reference string) (*models.Transaction, bool, error) {
	args := m.Called(reference)
	return args.Get(0).(*models.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockTransactionRepo) GetAllByWalletID(walletID string, limit int) ([]models.Transaction, error) {
	args := m.Called(walletID, limit)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) UpdateStatus(id, status string, tx *sqlx.Tx) error {
	args := m.Called(id, status, tx)
	return args.Error(0)
}

func (m *MockTransactionRepo) SumAmountByTypeAndStatus(walletID, transactionType, status string) (decimal.Decimal, error) {
	args := m.Called(walletID, transactionType, status)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
