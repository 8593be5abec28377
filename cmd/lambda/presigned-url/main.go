// Presigned URL Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	appConfig "card-fee-simulator/internal/config"
	"card-fee-simulator/internal/handlers"
	s3service "card-fee-simulator/internal/services/s3"
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

	s3Svc, err := s3service.NewService(context.Background(), cfg)
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}

	// Start Lambda
	lambda.Start(handlers.NewPresignedURLHandler(s3Svc).Handle)
}
