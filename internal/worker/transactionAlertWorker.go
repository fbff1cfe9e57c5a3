// Settled transactions are announced on the transaction.success topic after
// the ledger has committed the balance change.
// This worker re-reads the records and sends the matching email alert,
// debit alert for the sender's leg, credit alert for the recipient's leg
// and deposit alert for confirmed deposits.
package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/monibag/monibag/internal/handler"
	"github.com/monibag/monibag/internal/models"
	"github.com/monibag/monibag/internal/stream"
)

func (wk *Worker) TransactionAlertWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: transactionAlertGroupID,
		Topic:   TransactionSuccessTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close() // Ensure cleanup

	for {
		select {
		case <-wk.Ctx.Done():
			log.Println("TransactionAlertWorker received cancellation signal, shutting down...")
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

				wk.sendTransactionAlert(txnEvent)
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

func (wk *Worker) sendTransactionAlert(txnEvent *handler.TransactionEvent) bool {
	transaction, found, err := wk.DB.Transaction().GetOne(txnEvent.TransactionID)
	if err != nil || !found {
		log.Printf("Error finding transaction for alert: %v", err)
		return false
	}

	wallet, found, err := wk.DB.Wallet().GetOne(transaction.WalletID, false, nil)
	if err != nil || !found {
		log.Printf("Error finding wallet for alert: %v", err)
		return false
	}

	owner, found, err := wk.DB.User().GetOne(wallet.UserID)
	if err != nil || !found {
		log.Printf("Error finding wallet owner for alert: %v", err)
		return false
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = owner.FirstName + " " + owner.LastName
	emailData["Amount"] = transaction.Amount
	emailData["Currency"] = wallet.Currency
	emailData["Reference"] = transaction.Reference
	emailData["NewBalance"] = wallet.Balance

	var pattern string
	switch transaction.Type {
	case models.TransactionTypeDeposit:
		pattern = "deposit-alert.tmpl"
	case models.TransactionTypeTransferOut:
		pattern = "debit-alert.tmpl"
		emailData["RecipientWalletNumber"] = transaction.Metadata["recipient_wallet"]
	case models.TransactionTypeTransferIn:
		pattern = "credit-alert.tmpl"
		emailData["SenderWalletNumber"] = transaction.Metadata["sender_wallet"]
	default:
		log.Printf("No alert template for transaction type %q", transaction.Type)
		return false
	}

	wk.Helper.BackgroundTask(nil, func() error {
		err := wk.Mailer.Send(owner.Email, emailData, pattern)
		if err != nil {
			log.Printf("Error sending %s alert email: %v", transaction.Type, err)
			return err
		}
		return nil
	})

	return true
}
