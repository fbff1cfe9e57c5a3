package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/monibag/monibag/internal/cache"
	"github.com/monibag/monibag/internal/config"
	"github.com/monibag/monibag/internal/env"
	"github.com/monibag/monibag/internal/errHandler"
	"github.com/monibag/monibag/internal/helper"
	"github.com/monibag/monibag/internal/ledger"
	"github.com/monibag/monibag/internal/repository"
	"github.com/monibag/monibag/internal/smtp"
	"github.com/monibag/monibag/internal/stream"

	"github.com/joho/godotenv"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items when they need them
type Application struct {
	Config       config.Config
	DB           repository.Database
	Logger       *slog.Logger
	Mailer       *smtp.Mailer
	WG           sync.WaitGroup
	ErrorHandler *errHandler.ErrorRepository
	Helper       helper.HelperInterface
	Kafka        *stream.KafkaStream
	Cache        *cache.Cache
	Ledger       *ledger.Ledger
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "hx6pk2ycmf4qwzrvn8eb3tdsg5l0aju9")

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Monibag <no_reply@monibag.example>")

	cfg.PaymentProvider.CheckoutURL = env.GetString("PAYMENT_PROVIDER_CHECKOUT_URL", "https://checkout.payments.example/pay")

	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")
	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	app := &Application{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Mailer: mailer,
	}

	app.ErrorHandler = errHandler.New(cfg.Notifications.Email, mailer, logger)
	app.Helper = helper.New(&app.Config.BaseURL, &app.WG, app.ErrorHandler)
	app.Kafka = stream.New(cfg.KafkaServers)
	app.Cache = cache.New(cfg.RedisServer, 0)
	app.Ledger = ledger.New(db, logger)

	return app, nil
}
