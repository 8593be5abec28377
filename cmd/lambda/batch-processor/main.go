// Batch Processor Lambda entry point, triggered by scenario CSV uploads
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	appConfig "card-fee-simulator/internal/config"
	"card-fee-simulator/internal/handlers"
	"card-fee-simulator/internal/utils"
)

func main() {
	cfg, err := appConfig.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	ctx := context.Background()
	deps, err := handlers.NewDeps(ctx, cfg)
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}
	defer deps.Close()

	handler := handlers.NewBatchProcessorHandler(deps.S3, deps.NewRunner(ctx))

	// Start Lambda
	lambda.Start(handler.Handle)
}
