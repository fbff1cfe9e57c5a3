package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/monibag/monibag/internal/cache"
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
	ErrDepositNotSettleable = errors.New("deposit can no longer be confirmed")
	ErrAmountMismatch       = errors.New("amount does not match the initiated deposit")
	ErrConfirmationInFlight = errors.New("deposit confirmation is already in progress")
)

// depositConfirmationKeyPrefix namespaces the short-lived reservation a
// confirmation holds while it credits the wallet. Concurrent notifications
// for the same reference race on this key and only one proceeds.
const depositConfirmationKeyPrefix = "deposit-confirmation:"

const depositConfirmationTTL = time.Minute

type WebhookHandler struct {
	TransactionRepo repository.TransactionRepository
	Ledger          *ledger.Ledger
	Cache           *cache.Cache
	Kafka           *stream.KafkaStream
	ErrHandler      *errHandler.ErrorRepository
}

func NewWebhookHandler(handler *WebhookHandler) *WebhookHandler {
	return &WebhookHandler{
		TransactionRepo: handler.TransactionRepo,
		Ledger:          handler.Ledger,
		Cache:           handler.Cache,
		Kafka:           handler.Kafka,
		ErrHandler:      handler.ErrHandler,
	}
}

// Payment providers retry notifications until they see a 2xx, so this
// endpoint has to stay safe to call any number of times:
// a deposit that already settled answers OK without touching the store,
// and concurrent notifications for the same reference are serialized
// through a cache reservation so the wallet is credited exactly once.
func (h *WebhookHandler) HandlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Reference string              `json:"reference"`
		Amount    decimal.Decimal     `json:"amount"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Reference), "Reference is required")
	input.Validator.Check(input.Amount.IsPositive(), "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	transaction, found, err := h.TransactionRepo.GetOneByReference(input.Reference)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found || transaction.Type != models.TransactionTypeDeposit {
		h.ErrHandler.NotFound(w, r)
		return
	}

	// a settled deposit acknowledges the replay without touching anything
	if transaction.Status == models.TransactionSuccessStatus {
		message := "Deposit already confirmed"
		err = response.JSONOkResponse(w, nil, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	if transaction.Status == models.TransactionFailedStatus {
		h.ErrHandler.ConflictRequest(w, r, ErrDepositNotSettleable)
		return
	}

	if !input.Amount.Equal(transaction.Amount) {
		h.ErrHandler.UnprocessableEntity(w, r, ErrAmountMismatch)
		return
	}

	reservationKey := depositConfirmationKeyPrefix + transaction.Reference

	reserved, err := h.Cache.SetIfNotExists(reservationKey, "locked", depositConfirmationTTL)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !reserved {
		h.ErrHandler.ConflictRequest(w, r, ErrConfirmationInFlight)
		return
	}

	_, err = h.Ledger.Credit(r.Context(), transaction.WalletID, transaction.ID)
	if err != nil {
		// free the reservation so the provider's retry can get through
		if delErr := h.Cache.Delete(reservationKey); delErr != nil {
			log.Printf("Error releasing deposit confirmation reservation: %v", delErr)
		}

		// another notification settled it between our lookup and the credit
		if errors.Is(err, ledger.ErrTransactionFinalized) {
			message := "Deposit already confirmed"
			err = response.JSONOkResponse(w, nil, message, nil)
			if err != nil {
				h.ErrHandler.ServerError(w, r, err)
			}
			return
		}

		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// the reservation is left to expire on its own, soaking up immediate
	// duplicate notifications; later replays hit the settled check above

	transaction.Status = models.TransactionSuccessStatus

	produceTransactionEvent(h.Kafka, transactionSuccessTopic, newTransactionEvent(r, transaction))

	message := "Deposit confirmed successfully"

	data := map[string]string{
		"reference": transaction.Reference,
		"status":    transaction.Status,
	}

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
