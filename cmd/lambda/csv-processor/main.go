// CSV Processor Lambda entry point, triggered by S3 uploads.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"kisanmitra-scheme-engine/internal/app"
	"kisanmitra-scheme-engine/internal/config"
	"kisanmitra-scheme-engine/internal/handlers"
	"kisanmitra-scheme-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	a, err := app.Build(context.Background(), cfg, app.Options{
		RequireDatabase: true,
		Storage:         true,
		Email:           true,
	})
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}
	defer a.Close()

	handler := handlers.NewCSVProcessorHandler(a.Storage, a.Service)

	lambda.Start(handler.Handle)
}
