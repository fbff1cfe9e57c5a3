package handler

import (
	"crypto/rand"
	"errors"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/monibag/monibag/internal/config"
	"github.com/monibag/monibag/internal/errHandler"
	"github.com/monibag/monibag/internal/helper"
	"github.com/monibag/monibag/internal/models"
	"github.com/monibag/monibag/internal/repository"
	"github.com/monibag/monibag/internal/request"
	"github.com/monibag/monibag/internal/response"
	"github.com/monibag/monibag/internal/smtp"
	"github.com/monibag/monibag/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/jmoiron/sqlx"
	"github.com/pascaldekloe/jwt"
)

// maxWalletNumberAttempts bounds the wallet number regeneration loop during
// onboarding. The number space is large enough that one attempt almost
// always suffices.
const maxWalletNumberAttempts = 5

type AuthHandler struct {
	DB         repository.Database
	UserRepo   repository.UserRepository
	WalletRepo repository.WalletRepository
	Helper     helper.HelperInterface
	Mailer     smtp.MailerInterface
	Config     *config.Config
	ErrHandler *errHandler.ErrorRepository
}

func NewAuthHandler(handler *AuthHandler) *AuthHandler {
	return &AuthHandler{
		DB:         handler.DB,
		UserRepo:   handler.UserRepo,
		WalletRepo: handler.WalletRepo,
		Helper:     handler.Helper,
		Mailer:     handler.Mailer,
		Config:     handler.Config,
		ErrHandler: handler.ErrHandler,
	}
}

// New user registration involves:
// Input validations and checking that no account exists for the email yet.
// We then start a database transaction to insert the user record and also
// create a wallet for the user.
// A failed operation at any point rolls back everything, a user never
// exists without a wallet.
func (h *AuthHandler) HandleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		FirstName string              `json:"first_name"`
		LastName  string              `json:"last_name"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	// we need to validate the password to make sure it meets the minimum requirements
	// the Validate function returns a slice of errors if the password does not meet the requirements
	_, errs := gopass.Validate(input.Password)

	if errs != nil {
		// return any errors found before we check the other fields
		// It's important that users have a strong password
		h.ErrHandler.FailedValidation(w, r, errs)
		return
	}

	found, err := h.UserRepo.CheckIfEmailExists(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")

	// we want to make sure no two users have the same email
	input.Validator.Check(!found, "Email is already in use")

	input.Validator.Check(validator.NotBlank(input.FirstName), "First name is required")
	input.Validator.Check(len(input.FirstName) >= 3, "First name is too short")

	input.Validator.Check(validator.NotBlank(input.LastName), "Last name is required")
	input.Validator.Check(len(input.LastName) >= 3, "Last name is too short")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// we are using a transaction to make sure that if any of the operations fail
	// we can rollback the changes and return an error to the client
	// ...without having incomplete data in the operations
	tx, err := h.DB.BeginTx(r.Context(), nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	defer func() {
		// always make sure it rolls back, if there is an error
		// ...and the transaction is not committed
		if err != nil {
			tx.Rollback()
		}
	}()

	createdUser := &models.User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		HashedPassword: hashedPassword,
	}

	userID, err := h.UserRepo.Insert(createdUser, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// generate a wallet for the created user
	wallet, err := h.generateWallet(userID, tx)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = tx.Commit()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		emailData := h.Helper.NewEmailData()
		emailData["Name"] = createdUser.FirstName + " " + createdUser.LastName
		emailData["WalletNumber"] = wallet.WalletNumber
		emailData["ServiceName"] = ServiceName

		err := h.Mailer.Send(createdUser.Email, emailData, "welcome.tmpl")
		if err != nil {
			log.Printf("Error sending welcome email: %v", err)
			return err
		}

		return nil
	})

	message := "Account created successfully"

	data := map[string]string{
		"wallet_number": wallet.WalletNumber,
	}

	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// generateWallet creates the user's wallet inside the registration
// transaction. Wallet numbers are drawn at random and checked against the
// store before use; numbers stay reserved by their row forever, even after
// an account is closed, so a number is never handed out twice.
func (h *AuthHandler) generateWallet(userID string, tx *sqlx.Tx) (*models.Wallet, error) {
	var walletNumber string

	for attempt := 0; attempt < maxWalletNumberAttempts; attempt++ {
		candidate, err := generateWalletNumber()
		if err != nil {
			return nil, err
		}

		_, found, err := h.WalletRepo.GetOneByWalletNumber(candidate, false, nil)
		if err != nil {
			return nil, err
		}

		if !found {
			walletNumber = candidate
			break
		}
	}

	if walletNumber == "" {
		return nil, errors.New("could not generate an unused wallet number")
	}

	userWallet := &models.Wallet{
		UserID:       userID,
		WalletNumber: walletNumber,
	}

	id, err := h.WalletRepo.Insert(userWallet, tx)
	if err != nil {
		return nil, err
	}
	userWallet.ID = id

	return userWallet, nil
}

// generateWalletNumber draws a fixed-width numeric wallet number. The
// first digit is never zero so the number keeps its full width everywhere
// it is displayed or typed.
func generateWalletNumber() (string, error) {
	digits := make([]byte, models.WalletNumberLength)

	first, err := rand.Int(rand.Reader, big.NewInt(9))
	if err != nil {
		return "", err
	}
	digits[0] = '1' + byte(first.Int64())

	for i := 1; i < len(digits); i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(n.Int64())
	}

	return string(digits), nil
}

func (h *AuthHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email     string              `json:"email"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	user, found, err := h.UserRepo.GetByEmail(input.Email)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Email), "Email is required")
	input.Validator.Check(validator.IsEmail(input.Email), "Must be a valid email address")
	input.Validator.Check(found, "Incorrect email/password")

	if found {
		passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		input.Validator.Check(validator.NotBlank(input.Password), "Password is required")
		input.Validator.Check(passwordMatches, "Incorrect email/password")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	// check that account is active
	if user.Status != models.UserActiveStatus {
		message := "Account has been suspended. Please contact support"

		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	var claims jwt.Claims
	claims.Subject = user.ID

	expiry := time.Now().Add(24 * time.Hour)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = h.Config.BaseURL
	claims.Audiences = []string{h.Config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.Config.Jwt.SecretKey))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{
		"auth_token":   string(jwtBytes),
		"token_expiry": expiry.Format(time.RFC3339),
	}
	message := "Login succesful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
