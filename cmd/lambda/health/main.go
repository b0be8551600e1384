// Health Check Lambda entry point
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

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

	handler := handlers.NewHealthHandler(cfg)
	defer handler.Close()

	lambda.Start(handler.Handle)
}
