package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/mocks"
	"github.com/monibag/monibag/internal/models"
)

func newWalletTestHandler(db *mocks.MockDatabase) *WalletHandler {
	return &WalletHandler{
		WalletRepo: db.WalletRepo,
		Ledger:     newTestLedger(db),
		ErrHandler: newTestErrorHandler(),
	}
}

func getWalletEndpoint(t *testing.T, target string, user *models.User, handle http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest("GET", target, nil)
	require.NoError(t, err)
	req = context.ContextSetAuthenticatedUser(req, user)

	rr := httptest.NewRecorder()
	handle(rr, req)

	return rr
}

func TestHandleWalletDetails_Success(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	testUser := &models.User{ID: "user-1"}
	wallet := &models.Wallet{
		ID:           "wallet-a",
		UserID:       "user-1",
		WalletNumber: "1000000000001",
		Balance:      decimal.RequireFromString("97500.00"),
		Currency:     "NGN",
		Status:       models.WalletActiveStatus,
	}

	db.WalletRepo.On("GetOneByUserID", "user-1", false, mock.Anything).Return(wallet, true, nil)

	walletHandler := newWalletTestHandler(db)

	// Act
	rr := getWalletEndpoint(t, "/api/v1/wallets/me", testUser, walletHandler.HandleWalletDetails)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Expected response['data'] to be a map")

	require.Equal(t, "1000000000001", data["wallet_number"])
	require.Equal(t, "97500", data["balance"])
	require.Equal(t, "NGN", data["currency"])
	require.Equal(t, models.WalletActiveStatus, data["status"])
}

func TestHandleWalletDetails_NoWalletForUser(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	db.WalletRepo.On("GetOneByUserID", "user-1", false, mock.Anything).
		Return((*models.Wallet)(nil), false, nil)

	walletHandler := newWalletTestHandler(db)

	// Act
	rr := getWalletEndpoint(t, "/api/v1/wallets/me", &models.User{ID: "user-1"}, walletHandler.HandleWalletDetails)

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleWalletTransactions_ReturnsHistory(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	testUser := &models.User{ID: "user-1"}
	wallet := &models.Wallet{
		ID:           "wallet-a",
		UserID:       "user-1",
		WalletNumber: "1000000000001",
	}

	history := []models.Transaction{
		{
			ID:        "txn-2",
			WalletID:  "wallet-a",
			Type:      models.TransactionTypeTransferOut,
			Amount:    decimal.NewFromInt(2500),
			Reference: "TRF_9F81A2C04B7D_OUT",
			Status:    models.TransactionSuccessStatus,
			CreatedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        "txn-1",
			WalletID:  "wallet-a",
			Type:      models.TransactionTypeDeposit,
			Amount:    decimal.NewFromInt(100000),
			Reference: "DEP_4E1B0A92C3F7",
			Status:    models.TransactionSuccessStatus,
			CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
	}

	db.WalletRepo.On("GetOneByUserID", "user-1", false, mock.Anything).Return(wallet, true, nil)
	db.TransactionRepo.On("GetAllByWalletID", "wallet-a", 5).Return(history, nil)

	walletHandler := newWalletTestHandler(db)

	// Act: the limit query value travels through to the store lookup
	rr := getWalletEndpoint(t, "/api/v1/wallets/me/transactions?limit=5", testUser, walletHandler.HandleWalletTransactions)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].([]interface{})
	require.True(t, ok, "Expected response['data'] to be an array")
	require.Len(t, data, 2)

	// most recent first, as the store returns them
	first, ok := data[0].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "TRF_9F81A2C04B7D_OUT", first["reference"])
	require.Equal(t, models.TransactionTypeTransferOut, first["type"])

	db.TransactionRepo.AssertExpectations(t)
}

func TestHandleWalletReconciliation_ReportsBalanced(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	testUser := &models.User{ID: "user-1"}
	wallet := &models.Wallet{
		ID:           "wallet-a",
		UserID:       "user-1",
		WalletNumber: "1000000000001",
		Balance:      decimal.NewFromInt(97500),
	}

	db.WalletRepo.On("GetOneByUserID", "user-1", false, mock.Anything).Return(wallet, true, nil)
	db.WalletRepo.On("GetOne", "wallet-a", false, mock.Anything).Return(wallet, true, nil)
	db.TransactionRepo.On("SumAmountByTypeAndStatus", "wallet-a", models.TransactionTypeDeposit, models.TransactionSuccessStatus).
		Return(decimal.NewFromInt(100000), nil)
	db.TransactionRepo.On("SumAmountByTypeAndStatus", "wallet-a", models.TransactionTypeTransferIn, models.TransactionSuccessStatus).
		Return(decimal.NewFromInt(2500), nil)
	db.TransactionRepo.On("SumAmountByTypeAndStatus", "wallet-a", models.TransactionTypeTransferOut, models.TransactionSuccessStatus).
		Return(decimal.NewFromInt(5000), nil)

	walletHandler := newWalletTestHandler(db)

	// Act
	rr := getWalletEndpoint(t, "/api/v1/wallets/me/reconciliation", testUser, walletHandler.HandleWalletReconciliation)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)

	require.Equal(t, true, data["balanced"])
	require.Equal(t, "97500", data["balance"])
	require.Equal(t, "97500", data["computed_balance"])
}
