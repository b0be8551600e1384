// Presigned URL Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/handlers"
	s3service "kisanmitra-scheme-engine/internal/services/s3"
	"kisanmitra-scheme-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	storage, err := s3service.NewService(context.Background(), cfg)
	if err != nil {
		panic("Failed to create S3 service: " + err.Error())
	}

	handler := handlers.NewPresignedURLHandler(storage)

	lambda.Start(handler.Handle)
}
