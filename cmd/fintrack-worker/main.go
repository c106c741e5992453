package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	resyncOwner := flag.String("resync-owner", "", "export every transaction of this owner for -resync-month, then exit")
	resyncMonth := flag.String("resync-month", "", "month to resync, as yyyy-mm (default: current month)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	logger.Info("Starting fintrack-worker")
	ctx := context.Background()

	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backend.Config{
		Type:         backend.SQLiteBackend,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer result.Cleanup()

	sheetsClient, err := gsheet.NewFromConfig(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	syncWorker := worker.NewSyncWorker(result.Store, sheetsClient)

	if *resyncOwner != "" {
		code := resync(ctx, logger, cfg, syncWorker, *resyncOwner, *resyncMonth)
		result.Cleanup()
		os.Exit(code)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := amqpClient.ConsumeTransactionSync(runCtx, syncWorker.HandleSyncMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker shutdown complete")
}

// resync mirrors one month of an owner's transactions and returns the exit
// code.
func resync(ctx context.Context, logger *log.Logger, cfg *config.Config, w *worker.SyncWorker, owner, month string) int {
	loc := cfg.Location()
	p := core.PeriodOf(time.Now(), loc)
	if month != "" {
		t, err := time.ParseInLocation("2006-01", month, loc)
		if err != nil {
			logger.Error("Invalid -resync-month, want yyyy-mm", log.FieldError, err, "value", month)
			return 2
		}
		p = core.PeriodOf(t, loc)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	n, err := w.ResyncPeriod(ctx, owner, p)
	if err != nil {
		logger.Error("Resync failed", log.FieldError, err, log.FieldOwnerID, owner, "period", p.Key())
		return 1
	}
	logger.Info("Resync finished", log.FieldOwnerID, owner, "period", p.Key(), "synced", n)
	return 0
}
