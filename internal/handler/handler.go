package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/monibag/monibag/internal/context"
	"github.com/monibag/monibag/internal/models"
	"github.com/monibag/monibag/internal/stream"

	"github.com/shopspring/decimal"
)

// Topic names are mirrored from the worker package so that neither package
// has to import the other.
const (
	transactionSuccessTopic = "transaction.success"
	transactionFailedTopic  = "transaction.failed"
)

// TransactionEvent is the payload published for workers once a transaction
// reaches a terminal status. Workers re-read the records by id before
// acting, the payload itself only identifies them.
type TransactionEvent struct {
	TransactionID string          `json:"transaction_id"`
	WalletID      string          `json:"wallet_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	RequestID     string          `json:"request_id,omitempty"`
}

func newTransactionEvent(r *http.Request, transaction *models.Transaction) *TransactionEvent {
	return &TransactionEvent{
		TransactionID: transaction.ID,
		WalletID:      transaction.WalletID,
		Type:          transaction.Type,
		Amount:        transaction.Amount,
		Reference:     transaction.Reference,
		Status:        transaction.Status,
		RequestID:     context.ContextGetRequestID(r.Context()),
	}
}

// produceTransactionEvent publishes fire-and-forget; the response never
// waits on the broker. A nil stream drops the event.
func produceTransactionEvent(kafka *stream.KafkaStream, topic string, event *TransactionEvent) {
	if kafka == nil {
		return
	}

	jsonMessage, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling transaction event: %v", err)
		return
	}

	go kafka.ProduceMessage(topic, string(jsonMessage))
}

// retrieveLimitQueryValue reads the limit query param, returning zero when
// it is absent or unusable so the store falls back to its default.
func retrieveLimitQueryValue(r *http.Request) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		return 0
	}

	return limit
}
