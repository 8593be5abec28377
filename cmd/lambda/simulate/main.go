// Simulation Lambda entry point
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

	deps, err := handlers.NewDeps(context.Background(), cfg)
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}
	defer deps.Close()

	// Start Lambda
	lambda.Start(handlers.NewSimulateHandler(deps.Service).Handle)
}
