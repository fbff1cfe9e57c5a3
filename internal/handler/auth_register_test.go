package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monibag/monibag/internal/mocks"
	"github.com/monibag/monibag/internal/models"
)

func postRegister(t *testing.T, authHandler *AuthHandler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	requestBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/api/v1/auth/register", bytes.NewBuffer(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	authHandler.HandleAuthRegister(rr, req)

	return rr
}

func TestHandleAuthRegister_RejectsWeakPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.MockUserRepo)
	authHandler := newAuthTestHandler(mockUserRepo)

	// Act
	rr := postRegister(t, authHandler, map[string]string{
		"email":      "new@example.com",
		"password":   "abc",
		"first_name": "Amina",
		"last_name":  "Balogun",
	})

	// Assert: rejected before the email uniqueness lookup runs
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Empty(t, mockUserRepo.Calls)
}

func TestHandleAuthRegister_RejectsDuplicateEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("CheckIfEmailExists", "taken@example.com").Return(true, nil)

	authHandler := newAuthTestHandler(mockUserRepo)

	// Act
	rr := postRegister(t, authHandler, map[string]string{
		"email":      "taken@example.com",
		"password":   "Str0ng-Pass-1",
		"first_name": "Amina",
		"last_name":  "Balogun",
	})

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var response map[string]interface{}
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Contains(t, response["error"], "Email is already in use")

	mockUserRepo.AssertExpectations(t)
}

func TestHandleAuthRegister_RejectsShortNames(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.MockUserRepo)
	mockUserRepo.On("CheckIfEmailExists", "new@example.com").Return(false, nil)

	authHandler := newAuthTestHandler(mockUserRepo)

	// Act
	rr := postRegister(t, authHandler, map[string]string{
		"email":      "new@example.com",
		"password":   "Str0ng-Pass-1",
		"first_name": "Jo",
		"last_name":  "Ng",
	})

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestGenerateWalletNumber_Shape(t *testing.T) {
	for i := 0; i < 50; i++ {
		number, err := generateWalletNumber()
		require.NoError(t, err)

		require.Len(t, number, models.WalletNumberLength)

		// full width always: the leading digit is never zero
		require.GreaterOrEqual(t, number[0], byte('1'))
		require.LessOrEqual(t, number[0], byte('9'))

		for _, digit := range []byte(number) {
			require.GreaterOrEqual(t, digit, byte('0'))
			require.LessOrEqual(t, digit, byte('9'))
		}
	}
}
