package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/monibag/monibag/internal/config"
	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/errHandler"
	"github.com/monibag/monibag/internal/ledger"
	"github.com/monibag/monibag/internal/models"
	"github.com/monibag/monibag/internal/repository"
	"github.com/monibag/monibag/internal/request"
	"github.com/monibag/monibag/internal/response"
	"github.com/monibag/monibag/internal/stream"
	"github.com/monibag/monibag/internal/validator"

	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrRecipientNotFound = errors.New("recipient wallet not found")
)

type TransactionHandler struct {
	WalletRepo repository.WalletRepository
	Ledger     *ledger.Ledger
	Kafka      *stream.KafkaStream
	Config     *config.Config
	ErrHandler *errHandler.ErrorRepository
}

func NewTransactionHandler(handler *TransactionHandler) *TransactionHandler {
	return &TransactionHandler{
		WalletRepo: handler.WalletRepo,
		Ledger:     handler.Ledger,
		Kafka:      handler.Kafka,
		Config:     handler.Config,
		ErrHandler: handler.ErrHandler,
	}
}

type TransactionResponseData struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Metadata  models.Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func newTransactionResponseData(transaction *models.Transaction) *TransactionResponseData {
	return &TransactionResponseData{
		ID:        transaction.ID,
		Type:      transaction.Type,
		Amount:    transaction.Amount,
		Reference: transaction.Reference,
		Status:    transaction.Status,
		Metadata:  transaction.Metadata,
		CreatedAt: transaction.CreatedAt,
	}
}

type TransferResponseData struct {
	Reference             string          `json:"reference"`
	Amount                decimal.Decimal `json:"amount"`
	Status                string          `json:"status"`
	SenderWalletNumber    string          `json:"sender_wallet_number"`
	RecipientWalletNumber string          `json:"recipient_wallet_number"`
	NewBalance            decimal.Decimal `json:"new_balance"`
	CreatedAt             time.Time       `json:"created_at"`
}

// To move money between two wallets, we
// Step 1: validate the input without touching the store
// Step 2: resolve the sender's wallet and reject transfers to oneself early
// Step 3: hand over to the ledger, which locks both wallets and commits the
// debit, the credit and both transaction records together, or none of them
// Step 4: publish the settled legs so the notification workers can alert
// both account owners
func (h *TransactionHandler) HandleTransferMoney(w http.ResponseWriter, r *http.Request) {
	var input struct {
		WalletNumber string              `json:"wallet_number"`
		Amount       decimal.Decimal     `json:"amount"`
		Validator    validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	// Step 1: validations that need nothing from the store
	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")
	input.Validator.Check(validator.NotBlank(input.WalletNumber), "Recipient wallet number is required")
	input.Validator.Check(validator.Matches(input.WalletNumber, validator.RgxDigits), "Recipient wallet number must be numeric")
	input.Validator.Check(len(input.WalletNumber) == models.WalletNumberLength,
		fmt.Sprintf("Recipient wallet number must be %d digits", models.WalletNumberLength))

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	sender := context.ContextGetAuthenticatedUser(r)

	// Step 2: resolve the sender's wallet
	senderWallet, found, err := h.WalletRepo.GetOneByUserID(sender.ID, false, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		response.JSONErrorResponse(w, nil, ErrWalletNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	// check if it's an attempt to transfer to oneself
	if senderWallet.WalletNumber == input.WalletNumber {
		response.JSONErrorResponse(w, nil, ledger.ErrSameWalletTransfer.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	// Step 3: the ledger does the locking and the money movement
	result, err := h.Ledger.Transfer(r.Context(), senderWallet.WalletNumber, input.WalletNumber, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrWalletNotFound):
			// the sender's wallet was resolved above, so the missing one is
			// the recipient's
			response.JSONErrorResponse(w, nil, ErrRecipientNotFound.Error(), http.StatusUnprocessableEntity, nil)
		case errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ledger.ErrSameWalletTransfer),
			errors.Is(err, ledger.ErrInsufficientBalance):
			response.JSONErrorResponse(w, nil, err.Error(), http.StatusUnprocessableEntity, nil)
		case errors.Is(err, ledger.ErrIntegrityFailure):
			// both legs have been re-recorded with failed status; publish
			// them so the failure worker can follow up
			if result != nil {
				produceTransactionEvent(h.Kafka, transactionFailedTopic, newTransactionEvent(r, result.DebitTransaction))
				produceTransactionEvent(h.Kafka, transactionFailedTopic, newTransactionEvent(r, result.CreditTransaction))
			}
			h.ErrHandler.ServerError(w, r, err)
		default:
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	// Step 4: both legs settled, let the workers notify the owners
	produceTransactionEvent(h.Kafka, transactionSuccessTopic, newTransactionEvent(r, result.DebitTransaction))
	produceTransactionEvent(h.Kafka, transactionSuccessTopic, newTransactionEvent(r, result.CreditTransaction))

	message := "Transfer completed successfully"

	data := &TransferResponseData{
		Reference:             result.Reference,
		Amount:                input.Amount,
		Status:                result.DebitTransaction.Status,
		SenderWalletNumber:    result.SenderWallet.WalletNumber,
		RecipientWalletNumber: result.RecipientWallet.WalletNumber,
		NewBalance:            result.SenderWallet.Balance,
		CreatedAt:             result.DebitTransaction.CreatedAt,
	}

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
