// Command fintrack-events consumes store change messages from RabbitMQ and
// logs them, warning when generations go missing.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

const (
	shutdownTimeout = 10 * time.Second
	dialAttempts    = 10
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required")
		os.Exit(1)
	}

	logger.Info("Starting fintrack-events", log.FieldOperation, log.OpStartup, "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	client, err := amqp.DialWithRetry(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, dialAttempts, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func() { client.Close() })

	auditor := worker.NewChangeAuditor(logger)
	go func() {
		err := client.ConsumeStoreChanges(ctx, func(msg *amqp.StoreChangeMessage) error {
			return auditor.Handle(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err.Error())
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
