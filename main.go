package main

import (
	"log"

	"github.com/joho/godotenv"

	"wordmetrics/adapters/excel"
	"wordmetrics/app"
	"wordmetrics/internal"
	"wordmetrics/internal/config"
	"wordmetrics/internal/metrics"
	"wordmetrics/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, ok := internal.ParseLogLevel(appConfig.LogLevel)
	if !ok {
		log.Printf("Unknown LOG_LEVEL %q, using INFO", appConfig.LogLevel)
	}
	logger := internal.NewLogger(level)
	defer logger.Sync()

	readerConfig := excel.DefaultReaderConfig()
	reader := excel.NewReader(readerConfig).WithLogger(logger)
	transformer := metrics.NewTransformer(
		metrics.WithWorkers(appConfig.Transform.Workers),
		metrics.WithLogger(logger),
	)
	service := app.NewMetricsService(reader, transformer, logger)

	server := ui.NewServer(service, *appConfig, logger)
	logger.Info("[main] transform defaults: workers=%d naming=%s precision=%d preview=%d max_upload=%dMB",
		appConfig.Transform.Workers, appConfig.Transform.TermsNaming, appConfig.Transform.PercentPrecision,
		appConfig.Server.PreviewRows, appConfig.Server.MaxUploadMB)

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		logger.Error("[main] server stopped: %v", err)
		log.Fatalf("Server failed: %v", err)
	}
}
