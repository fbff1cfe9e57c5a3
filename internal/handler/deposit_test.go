package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/mocks"
	"github.com/monibag/monibag/internal/models"
)

func newDepositTestHandler(db *mocks.MockDatabase) *DepositHandler {
	return &DepositHandler{
		WalletRepo:      db.WalletRepo,
		TransactionRepo: db.TransactionRepo,
		Config:          &mocks.MockConfig,
		ErrHandler:      newTestErrorHandler(),
	}
}

func TestHandleInitiateDeposit_Success(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	testUser := &models.User{ID: "user-1"}
	wallet := &models.Wallet{
		ID:           "wallet-a",
		UserID:       "user-1",
		WalletNumber: "1000000000001",
	}

	db.WalletRepo.On("GetOneByUserID", "user-1", false, mock.Anything).Return(wallet, true, nil)
	wireTransactionInserts(db.TransactionRepo)

	depositHandler := newDepositTestHandler(db)

	requestBody, err := json.Marshal(map[string]any{"amount": 2500})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/v1/deposits", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = context.ContextSetAuthenticatedUser(req, testUser)

	rr := httptest.NewRecorder()

	// Act
	depositHandler.HandleInitiateDeposit(rr, req)

	// Assert
	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]interface{}
	err = json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "Expected response['data'] to be a map")

	require.Equal(t, models.TransactionPendingStatus, data["status"])

	reference, ok := data["reference"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(reference, "DEP_"))

	// the checkout link points at the provider's page for this reference
	authorizationURL, ok := data["authorization_url"].(string)
	require.True(t, ok)
	require.Equal(t, mocks.MockConfig.PaymentProvider.CheckoutURL+"/"+reference, authorizationURL)
}

func TestHandleInitiateDeposit_RejectsNonPositiveAmount(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()
	depositHandler := newDepositTestHandler(db)

	requestBody, err := json.Marshal(map[string]any{"amount": 0})
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/v1/deposits", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req = context.ContextSetAuthenticatedUser(req, &models.User{ID: "user-1"})

	rr := httptest.NewRecorder()

	// Act
	depositHandler.HandleInitiateDeposit(rr, req)

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Empty(t, db.WalletRepo.Calls)
	require.Empty(t, db.TransactionRepo.Calls)
}

func getDepositStatus(t *testing.T, depositHandler *DepositHandler, user *models.User, reference string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest("GET", "/api/v1/deposits/"+reference, nil)
	require.NoError(t, err)
	req.SetPathValue("reference", reference)
	req = context.ContextSetAuthenticatedUser(req, user)

	rr := httptest.NewRecorder()
	depositHandler.HandleDepositStatus(rr, req)

	return rr
}

func TestHandleDepositStatus_PendingDepositKeepsCheckoutLink(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	transaction := pendingDeposit()
	wallet := &models.Wallet{
		ID:           "wallet-a",
		UserID:       "user-1",
		WalletNumber: "1000000000001",
	}

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)
	db.WalletRepo.On("GetOne", "wallet-a", false, mock.Anything).Return(wallet, true, nil)

	depositHandler := newDepositTestHandler(db)

	// Act
	rr := getDepositStatus(t, depositHandler, &models.User{ID: "user-1"}, transaction.Reference)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, models.TransactionPendingStatus, data["status"])
	require.Contains(t, data, "authorization_url")
}

func TestHandleDepositStatus_SettledDepositHidesCheckoutLink(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	transaction := pendingDeposit()
	transaction.Status = models.TransactionSuccessStatus
	wallet := &models.Wallet{
		ID:           "wallet-a",
		UserID:       "user-1",
		WalletNumber: "1000000000001",
	}

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)
	db.WalletRepo.On("GetOne", "wallet-a", false, mock.Anything).Return(wallet, true, nil)

	depositHandler := newDepositTestHandler(db)

	// Act
	rr := getDepositStatus(t, depositHandler, &models.User{ID: "user-1"}, transaction.Reference)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, models.TransactionSuccessStatus, data["status"])
	require.NotContains(t, data, "authorization_url")
}

func TestHandleDepositStatus_DeniesAnotherUsersDeposit(t *testing.T) {
	// Arrange
	db := mocks.NewMockDatabase()

	transaction := pendingDeposit()
	wallet := &models.Wallet{
		ID:           "wallet-a",
		UserID:       "user-2",
		WalletNumber: "1000000000001",
	}

	db.TransactionRepo.On("GetOneByReference", transaction.Reference).Return(transaction, true, nil)
	db.WalletRepo.On("GetOne", "wallet-a", false, mock.Anything).Return(wallet, true, nil)

	depositHandler := newDepositTestHandler(db)

	// Act: user-1 asks about a deposit on user-2's wallet
	rr := getDepositStatus(t, depositHandler, &models.User{ID: "user-1"}, transaction.Reference)

	// Assert
	require.Equal(t, http.StatusForbidden, rr.Code)
}
