package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/monibag/monibag/internal/config"
	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/errHandler"
	"github.com/monibag/monibag/internal/ledger"
	"github.com/monibag/monibag/internal/models"
	"github.com/monibag/monibag/internal/repository"
	"github.com/monibag/monibag/internal/request"
	"github.com/monibag/monibag/internal/response"
	"github.com/monibag/monibag/internal/validator"

	"github.com/shopspring/decimal"
)

type DepositHandler struct {
	WalletRepo      repository.WalletRepository
	TransactionRepo repository.TransactionRepository
	Config          *config.Config
	ErrHandler      *errHandler.ErrorRepository
}

func NewDepositHandler(handler *DepositHandler) *DepositHandler {
	return &DepositHandler{
		WalletRepo:      handler.WalletRepo,
		TransactionRepo: handler.TransactionRepo,
		Config:          handler.Config,
		ErrHandler:      handler.ErrHandler,
	}
}

type DepositResponseData struct {
	ID               string          `json:"id"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	AuthorizationURL string          `json:"authorization_url,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

// A deposit starts life as a pending transaction against the user's
// wallet. The client completes payment on the provider's checkout page and
// the wallet is only credited when the provider's notification comes back
// through the webhook.
func (h *DepositHandler) HandleInitiateDeposit(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Amount    decimal.Decimal     `json:"amount"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user := context.ContextGetAuthenticatedUser(r)

	wallet, found, err := h.WalletRepo.GetOneByUserID(user.ID, false, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		response.JSONErrorResponse(w, nil, ErrWalletNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	transaction := &models.Transaction{
		WalletID:  wallet.ID,
		Type:      models.TransactionTypeDeposit,
		Amount:    input.Amount,
		Reference: ledger.NewDepositReference(),
		Metadata:  models.Metadata{"channel": "checkout"},
	}

	_, err = h.TransactionRepo.Insert(transaction, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Deposit initiated successfully"

	data := &DepositResponseData{
		ID:               transaction.ID,
		Reference:        transaction.Reference,
		Amount:           transaction.Amount,
		Status:           transaction.Status,
		AuthorizationURL: h.checkoutURL(transaction.Reference),
		CreatedAt:        transaction.CreatedAt.Format(time.RFC3339),
	}

	err = response.JSONCreatedResponse(w, data, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *DepositHandler) HandleDepositStatus(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	reference := r.PathValue("reference")

	transaction, found, err := h.TransactionRepo.GetOneByReference(reference)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || transaction.Type != models.TransactionTypeDeposit {
		h.ErrHandler.NotFound(w, r)
		return
	}

	wallet, found, err := h.WalletRepo.GetOne(transaction.WalletID, false, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// check if logged in user is the owner of the wallet
	if !found || user.ID != wallet.UserID {
		message := "Access denied"
		response.JSONErrorResponse(w, nil, message, http.StatusForbidden, nil)
		return
	}

	message := "Deposit fetched successfully"

	data := &DepositResponseData{
		ID:        transaction.ID,
		Reference: transaction.Reference,
		Amount:    transaction.Amount,
		Status:    transaction.Status,
		CreatedAt: transaction.CreatedAt.Format(time.RFC3339),
	}

	// the checkout link only matters while the deposit can still be paid
	if transaction.Status == models.TransactionPendingStatus {
		data.AuthorizationURL = h.checkoutURL(transaction.Reference)
	}

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *DepositHandler) checkoutURL(reference string) string {
	return strings.TrimSuffix(h.Config.PaymentProvider.CheckoutURL, "/") + "/" + reference
}
