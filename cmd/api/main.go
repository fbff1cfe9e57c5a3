package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/monibag/monibag/internal/app"
	seeders "github.com/monibag/monibag/internal/seeder"
	"github.com/monibag/monibag/internal/version"
	"github.com/monibag/monibag/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := run(logger)
	if err != nil {
		trace := string(debug.Stack())
		logger.Error(err.Error(), "trace", trace)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	showVersion := flag.Bool("version", false, "display version and exit")
	seedDemoData := flag.Bool("seed", false, "seed demo accounts and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s\n", version.Get())
		return nil
	}

	application, err := app.NewApplication(logger)
	if err != nil {
		return err
	}
	defer application.DB.Close()
	defer application.Cache.Close()

	if *seedDemoData {
		seeders.New(application.DB).Run()
		return nil
	}

	// workers stop once the server has finished draining
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wk := worker.New(&worker.Worker{
		KafkaStream: application.Kafka,
		DB:          application.DB,
		Ctx:         ctx,
		Helper:      application.Helper,
		Mailer:      application.Mailer,
		ErrHandler:  application.ErrorHandler,
	})

	go wk.TransactionAlertWorker()
	go wk.FailedTransactionWorker()

	return application.ServeHTTP()
}
