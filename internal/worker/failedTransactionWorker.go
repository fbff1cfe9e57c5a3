// Failed transactions have already been recorded with failed status by the
// time they reach the transaction.failed topic.
// This worker keeps a trail in the logs and raises a support notification,
// it never retries or reverses anything on its own.
package worker

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/monibag/monibag/internal/handler"
	"github.com/monibag/monibag/internal/stream"
)

func (wk *Worker) FailedTransactionWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: transactionFailureGroupID,
		Topic:   TransactionFailedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close() // Ensure cleanup

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("FailedTransactionWorker received cancellation signal, shutting down...")
			return
		default:
			// Poll for Kafka events
			event := consumer.Poll(100)
			switch e := event.(type) {
			case *kafka.Message:
				var txnEvent *handler.TransactionEvent
				json.Unmarshal(e.Value, &txnEvent)
				if txnEvent == nil {
					continue
				}

				wk.reportFailedTransaction(txnEvent)
			case kafka.Error:
				log.Printf("Error: %v\n", e)
			case *kafka.AssignedPartitions:
				consumer.Assign(e.Partitions)
			case *kafka.RevokedPartitions:
				consumer.Unassign()
			}
		}
	}
}

func (wk *Worker) reportFailedTransaction(txnEvent *handler.TransactionEvent) {
	log.Printf("Transaction failed: reference=%s type=%s wallet=%s amount=%s",
		txnEvent.Reference, txnEvent.Type, txnEvent.WalletID, txnEvent.Amount.String())

	reportErr := fmt.Errorf(
		"transaction %s (reference %s, type %s) for wallet %s ended in failed status",
		txnEvent.TransactionID, txnEvent.Reference, txnEvent.Type, txnEvent.WalletID,
	)
	wk.ErrHandler.ReportServerError(nil, reportErr)
}
