package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monibag/monibag/internal/cache"
	"github.com/monibag/monibag/internal/mocks"
	"github.com/monibag/monibag/internal/models"
)

func newWebhookTestHandler(t *testing.T, db *mocks.MockDatabase) (*WebhookHandler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	webhookHandler := &WebhookHandler{
		TransactionRepo: db.TransactionRepo,
		Ledger:          newTestLedger(db),
		Cache:           cache.New(mr.Addr(), 0),
		ErrHandler:      newTestErrorHandler(),
	}

	return webhookHandler, mr
}

func postPaymentNotification(t *testing.T, webhookHandler *WebhookHandler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	requestBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/v1/webhooks/payments", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	webhookHandler.HandlePaymentNotification(rr, req)

	return rr
}

func pendingDeposit() *models.Transaction {
	return &models.Transaction{
		ID:        "txn-1",
		WalletID:  "wallet-a",
		Type:      models.TransactionTypeDeposit,
		Amount:    decimal.NewFromInt(2500),
		Reference: "DEP_4E1B0A92C3F7",
		Status:    models.TransactionPendingStatus,
	}
}

func TestHandlePaymentNotification_ConfirmsPendingDeposit(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()
	transaction := pendingDeposit()
	wallet := &models.Wallet{
		ID:           "wallet-a",
		WalletNumber: "1000000000001",
		Balance:      decimal.NewFromInt(100),
	}

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)
	db.TransactionRepo.On("GetOne", "txn-1").Return(transaction, true, nil)
	db.WalletRepo.On("GetOne", "wallet-a", true, mock.Anything).Return(wallet, true, nil)
	db.WalletRepo.On("UpdateBalance", "wallet-a", mock.Anything, mock.Anything).Return(nil)
	db.TransactionRepo.On("UpdateStatus", "txn-1", models.TransactionSuccessStatus, mock.Anything).Return(nil)

	webhookHandler, mr := newWebhookTestHandler(t, db)

	// Act
	rr := postPaymentNotification(t, webhookHandler, map[string]any{
		"reference": transaction.Reference,
		"amount":    2500,
	})

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Expected response['data'] to be a map")
	require.Equal(t, models.TransactionSuccessStatus, data["status"])

	require.True(t, wallet.Balance.Equal(decimal.NewFromInt(2600)))

	// the reservation is left behind to soak up duplicate notifications
	require.True(t, mr.Exists(depositConfirmationKeyPrefix+transaction.Reference))

	db.WalletRepo.AssertExpectations(t)
	db.TransactionRepo.AssertExpectations(t)
}

func TestHandlePaymentNotification_ReplayOfSettledDeposit(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()
	transaction := pendingDeposit()
	transaction.Status = models.TransactionSuccessStatus

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)

	webhookHandler, mr := newWebhookTestHandler(t, db)

	// Act
	rr := postPaymentNotification(t, webhookHandler, map[string]any{
		"reference": transaction.Reference,
		"amount":    2500,
	})

	// Assert: acknowledged without touching the wallet or the cache
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, db.WalletRepo.Calls)
	require.False(t, mr.Exists(depositConfirmationKeyPrefix+transaction.Reference))
}

func TestHandlePaymentNotification_ConcurrentDeliveryConflict(t *testing.T) {
	// Arrange: another notification already holds the reservation
	db := mocks.NewMockDatabase()
	transaction := pendingDeposit()

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)

	webhookHandler, _ := newWebhookTestHandler(t, db)

	reserved, err := webhookHandler.Cache.SetIfNotExists(depositConfirmationKeyPrefix+transaction.Reference, "locked", time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	// Act
	rr := postPaymentNotification(t, webhookHandler, map[string]any{
		"reference": transaction.Reference,
		"amount":    2500,
	})

	// Assert
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Empty(t, db.WalletRepo.Calls)
}

func TestHandlePaymentNotification_AmountMismatch(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()
	transaction := pendingDeposit()

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)

	webhookHandler, mr := newWebhookTestHandler(t, db)

	// Act: the provider reports a different amount than was initiated
	rr := postPaymentNotification(t, webhookHandler, map[string]any{
		"reference": transaction.Reference,
		"amount":    100,
	})

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Empty(t, db.WalletRepo.Calls)
	require.False(t, mr.Exists(depositConfirmationKeyPrefix+transaction.Reference))
}

func TestHandlePaymentNotification_FailedDepositStaysFailed(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()
	transaction := pendingDeposit()
	transaction.Status = models.TransactionFailedStatus

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)

	webhookHandler, _ := newWebhookTestHandler(t, db)

	// Act
	rr := postPaymentNotification(t, webhookHandler, map[string]any{
		"reference": transaction.Reference,
		"amount":    2500,
	})

	// Assert
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Empty(t, db.WalletRepo.Calls)
}

func TestHandlePaymentNotification_UnknownReference(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	db.TransactionRepo.On("GetOneByReference", "DEP_000000000000").
		Return((*models.Transaction)(nil), false, nil)

	webhookHandler, _ := newWebhookTestHandler(t, db)

	// Act
	rr := postPaymentNotification(t, webhookHandler, map[string]any{
		"reference": "DEP_000000000000",
		"amount":    2500,
	})

	// Assert
	require.Equal(t, http.StatusNotFound, rr.Code)
}
