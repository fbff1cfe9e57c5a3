package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pascaldekloe/jwt"
	"github.com/stretchr/testify/require"

	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/errHandler"
	"github.com/monibag/monibag/internal/mocks"
	"github.com/monibag/monibag/internal/models"
)

func newTestMiddleware(mockUserRepo *mocks.MockUserRepo) *Middleware {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(errHandler.New("", nil, logger), logger, mockUserRepo, &mocks.MockConfig)
}

func TestCorrelationID_PropagatesIncomingID(t *testing.T) {
	// Arrange
	mid := newTestMiddleware(new(mocks.MockUserRepo))

	var seenRequestID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenRequestID = context.ContextGetRequestID(r.Context())
	})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("X-Request-Id", "req-abc123")

	rr := httptest.NewRecorder()

	// Act
	mid.CorrelationID(next).ServeHTTP(rr, req)

	// Assert: the caller's id travels through the context and comes back
	// on the response
	require.Equal(t, "req-abc123", seenRequestID)
	require.Equal(t, "req-abc123", rr.Header().Get("X-Request-Id"))
}

func TestCorrelationID_GeneratesIDWhenAbsent(t *testing.T) {
	// Arrange
	mid := newTestMiddleware(new(mocks.MockUserRepo))

	var seenRequestID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenRequestID = context.ContextGetRequestID(r.Context())
	})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	rr := httptest.NewRecorder()

	// Act
	mid.CorrelationID(next).ServeHTTP(rr, req)

	// Assert
	require.NotEmpty(t, seenRequestID)
	require.Equal(t, seenRequestID, rr.Header().Get("X-Request-Id"))
}

func signTestToken(t *testing.T, userID string) string {
	t.Helper()

	var claims jwt.Claims
	claims.Subject = userID
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(time.Now().Add(time.Hour))
	claims.Issuer = mocks.MockConfig.BaseURL
	claims.Audiences = []string{mocks.MockConfig.BaseURL}

	token, err := claims.HMACSign(jwt.HS256, []byte(mocks.MockConfig.Jwt.SecretKey))
	require.NoError(t, err)

	return string(token)
}

func TestAuthenticate_ResolvesUserFromBearerToken(t *testing.T) {
	// Arrange
	mockUserRepo := new(mocks.MockUserRepo)
	testUser := &models.User{ID: "user-1", Email: "test@example.com", Status: models.UserActiveStatus}
	mockUserRepo.On("GetOne", "user-1").Return(testUser, true, nil)

	mid := newTestMiddleware(mockUserRepo)

	var seenUser *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = context.ContextGetAuthenticatedUser(r)
	})

	req := httptest.NewRequest("GET", "/api/v1/wallets/me", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "user-1"))

	rr := httptest.NewRecorder()

	// Act
	mid.Authenticate(next).ServeHTTP(rr, req)

	// Assert
	require.NotNil(t, seenUser)
	require.Equal(t, "user-1", seenUser.ID)

	mockUserRepo.AssertExpectations(t)
}

func TestAuthenticate_RejectsGarbageToken(t *testing.T) {
	// Arrange
	mid := newTestMiddleware(new(mocks.MockUserRepo))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run for an invalid token")
	})

	req := httptest.NewRequest("GET", "/api/v1/wallets/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	rr := httptest.NewRecorder()

	// Act
	mid.Authenticate(next).ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
}

func TestRequireAuthenticatedUser_BlocksAnonymousRequests(t *testing.T) {
	// Arrange
	mid := newTestMiddleware(new(mocks.MockUserRepo))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run without an authenticated user")
	})

	req := httptest.NewRequest("GET", "/api/v1/wallets/me", nil)
	rr := httptest.NewRecorder()

	// Act
	mid.RequireAuthenticatedUser(next).ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
