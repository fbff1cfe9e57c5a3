package worker

import (
	"context"

	"github.com/monibag/monibag/internal/errHandler"
	"github.com/monibag/monibag/internal/helper"
	"github.com/monibag/monibag/internal/repository"
	"github.com/monibag/monibag/internal/smtp"
	"github.com/monibag/monibag/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Ctx         context.Context
	Helper      helper.HelperInterface
	Mailer      smtp.MailerInterface
	ErrHandler  *errHandler.ErrorRepository
}

const (
	// transactionAlertGroupID is used for workers that send customer notifications once a transaction has settled
	transactionAlertGroupID = "transaction-alert-group"

	// transactionFailureGroupID is used for workers that need to take action when a transaction ends in failed status
	transactionFailureGroupID = "transaction-failure-group"

	// Topics
	// TransactionSuccessTopic carries transactions whose balance changes have already been committed.
	// Consumers only read state and notify, they never move money.
	TransactionSuccessTopic = "transaction.success"

	// TransactionFailedTopic carries transactions that could not be completed, so failures can be followed up on
	TransactionFailedTopic = "transaction.failed"
)

// Our workers typically need access to the database and kafka event stream
// worker-specific dependency can be passed as argument to the worker
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Ctx:         wk.Ctx,
		Helper:      wk.Helper,
		Mailer:      wk.Mailer,
		ErrHandler:  wk.ErrHandler,
	}
}
