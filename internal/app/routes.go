package app

import (
	"net/http"

	"github.com/monibag/monibag/internal/handler"
	"github.com/monibag/monibag/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.ErrorHandler, app.Logger, app.DB.User(), &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.ErrorHandler)

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		DB:         app.DB,
		UserRepo:   app.DB.User(),
		WalletRepo: app.DB.Wallet(),
		Helper:     app.Helper,
		Mailer:     app.Mailer,
		Config:     &app.Config,
		ErrHandler: app.ErrorHandler,
	})

	walletHandler := handler.NewWalletHandler(&handler.WalletHandler{
		WalletRepo: app.DB.Wallet(),
		Ledger:     app.Ledger,
		ErrHandler: app.ErrorHandler,
	})

	transactionHandler := handler.NewTransactionHandler(&handler.TransactionHandler{
		WalletRepo: app.DB.Wallet(),
		Ledger:     app.Ledger,
		Kafka:      app.Kafka,
		Config:     &app.Config,
		ErrHandler: app.ErrorHandler,
	})

	depositHandler := handler.NewDepositHandler(&handler.DepositHandler{
		WalletRepo:      app.DB.Wallet(),
		TransactionRepo: app.DB.Transaction(),
		Config:          &app.Config,
		ErrHandler:      app.ErrorHandler,
	})

	webhookHandler := handler.NewWebhookHandler(&handler.WebhookHandler{
		TransactionRepo: app.DB.Transaction(),
		Ledger:          app.Ledger,
		Cache:           app.Cache,
		Kafka:           app.Kafka,
		ErrHandler:      app.ErrorHandler,
	})

	mux.HandleFunc("GET /api/v1/health", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.HandleAuthRegister)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.HandleAuthLogin)

	// the payment provider calls this one; deposits are matched by
	// reference, not by an authenticated user
	mux.HandleFunc("POST /api/v1/webhooks/payments", webhookHandler.HandlePaymentNotification)

	mux.Handle("GET /api/v1/wallets/me",
		middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(walletHandler.HandleWalletDetails)))
	mux.Handle("GET /api/v1/wallets/me/transactions",
		middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(walletHandler.HandleWalletTransactions)))
	mux.Handle("GET /api/v1/wallets/me/reconciliation",
		middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(walletHandler.HandleWalletReconciliation)))

	mux.Handle("POST /api/v1/transfers",
		middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(transactionHandler.HandleTransferMoney)))

	mux.Handle("POST /api/v1/deposits",
		middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(depositHandler.HandleInitiateDeposit)))
	mux.Handle("GET /api/v1/deposits/{reference}",
		middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(depositHandler.HandleDepositStatus)))

	return middlewareRepo.CorrelationID(middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux))))
}
