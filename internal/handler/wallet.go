package handler

import (
	"net/http"
	"time"

	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/errHandler"
	"github.com/monibag/monibag/internal/ledger"
	"github.com/monibag/monibag/internal/models"
	"github.com/monibag/monibag/internal/repository"
	"github.com/monibag/monibag/internal/response"

	"github.com/shopspring/decimal"
)

const ServiceName = "Monibag"

type WalletResponseData struct {
	ID           string          `json:"id"`
	WalletNumber string          `json:"wallet_number"`
	Balance      decimal.Decimal `json:"balance"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

type WalletHandler struct {
	WalletRepo repository.WalletRepository
	Ledger     *ledger.Ledger
	ErrHandler *errHandler.ErrorRepository
}

func NewWalletHandler(handler *WalletHandler) *WalletHandler {
	return &WalletHandler{
		WalletRepo: handler.WalletRepo,
		Ledger:     handler.Ledger,
		ErrHandler: handler.ErrHandler,
	}
}

// lookupWallet resolves the authenticated user's wallet and writes the
// response itself when that fails.
func (h *WalletHandler) lookupWallet(w http.ResponseWriter, r *http.Request) (*models.Wallet, bool) {
	user := context.ContextGetAuthenticatedUser(r)

	wallet, found, err := h.WalletRepo.GetOneByUserID(user.ID, false, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return nil, false
	}

	if !found {
		response.JSONErrorResponse(w, nil, ErrWalletNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return nil, false
	}

	return wallet, true
}

func (h *WalletHandler) HandleWalletDetails(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.lookupWallet(w, r)
	if !ok {
		return
	}

	message := "Wallet details fetched successfully"

	data := &WalletResponseData{
		ID:           wallet.ID,
		WalletNumber: wallet.WalletNumber,
		Balance:      wallet.Balance,
		Currency:     wallet.Currency,
		Status:       wallet.Status,
		CreatedAt:    wallet.CreatedAt,
	}
	err := response.JSONOkResponse(w, data, message, nil)

	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *WalletHandler) HandleWalletTransactions(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.lookupWallet(w, r)
	if !ok {
		return
	}

	limit := retrieveLimitQueryValue(r)

	transactions, err := h.Ledger.Transactions(r.Context(), wallet.ID, limit)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Transactions fetched successfully"

	data := make([]*TransactionResponseData, len(transactions))
	for i := range transactions {
		data[i] = newTransactionResponseData(&transactions[i])
	}

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *WalletHandler) HandleWalletReconciliation(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.lookupWallet(w, r)
	if !ok {
		return
	}

	report, err := h.Ledger.Reconcile(r.Context(), wallet.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Reconciliation report generated successfully"

	err = response.JSONOkResponse(w, report, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
