package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/monibag/monibag/internal/models"
)

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) Insert(wallet *models.Wallet, tx *sqlx.Tx) (string, error) {
	args := m.Called(wallet, tx)
	return args.String(0), args.Error(1)
}

func (m *MockWalletRepo) GetOne(id string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error) {
	args := m.Called(id, forUpdate, tx)
	return args.Get(0).(*models.Wallet), args.Bool(1), args.Error(2)
}

func (m *MockWalletRepo) GetOneByUserID(userID string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error) {
	args := m.Called(userID, forUpdate, tx)
	return args.Get(0).(*models.Wallet), args.Bool(1), args.Error(2)
}

func (m *MockWalletRepo) GetOneByWalletNumber(walletNumber string, forUpdate bool, tx *sqlx.Tx) (*models.Wallet, bool, error) {
	args := m.Called(walletNumber, forUpdate, tx)
	return args.Get(0).(*models.Wallet), args.Bool(1), args.Error(2)
}

func (m *MockWalletRepo) UpdateBalance(id string, balance decimal.Decimal, tx *sqlx.Tx) error {
	args := m.Called(id, balance, tx)
	return args.Error(0)
}
