// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	appConfig "card-fee-simulator/internal/config"
	"card-fee-simulator/internal/handlers"
	"card-fee-simulator/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	cfg, err := appConfig.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// A backend that is down at cold start is reported as degraded, not fatal
	var checks map[string]handlers.HealthCheck
	deps, err := handlers.NewDeps(context.Background(), cfg)
	if err != nil {
		utils.GetLogger().Warn("Dependencies unavailable", zap.Error(err))
		startupErr := err
		checks = map[string]handlers.HealthCheck{
			"snapshot": func(ctx context.Context) error { return startupErr },
		}
	} else {
		defer deps.Close()
		checks = deps.HealthChecks()
	}

	// Start Lambda
	lambda.Start(handlers.NewHealthHandler(checks).Handle)
}
