package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"shiftinsight.com/shiftinsight/config"
	"shiftinsight.com/shiftinsight/infrastructure/filesystem"
	"shiftinsight.com/shiftinsight/ingest"
)

func main() {
	cfg := config.Use()
	logger := config.NewLogger(cfg.LogrusLogLevel())

	svc, err := ingest.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open warehouse")
	}

	h := &Handler{loader: svc, read: filesystem.ReadFile, log: logger}
	lambda.Start(h.HandleRequest)
}
