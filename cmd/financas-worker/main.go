package main

import (
	"context"
	"errors"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/log"
	gsheet "financas/internal/sheets/google"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)
	logger.Info("Starting financas-worker", log.FieldOperation, log.OpStartup)

	if err := errors.Join(cfg.Validate(), cfg.ValidateWorker()); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// The worker only reads books; events come from the consumer below.
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res := cli.InitBackend(context.Background(), logger, &storeCfg)

	publisher, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(res.Store, publisher, cfg.SyncTimeout)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := errors.Join(client.Close(), res.Cleanup()); err != nil {
			logger.Error("Worker cleanup failed", log.FieldError, err)
		}
	})

	go func() {
		err := client.ConsumeBookSaved(ctx, syncWorker.HandleBookSaved)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
