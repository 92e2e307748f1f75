package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/agribrazil/leadchat/internal/chat"
	"github.com/agribrazil/leadchat/internal/gateway"
	"github.com/agribrazil/leadchat/internal/lead"
	"github.com/agribrazil/leadchat/internal/server"
	"github.com/agribrazil/leadchat/internal/storage"
	"github.com/agribrazil/leadchat/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize the language-model gateway
	gw := gateway.NewOpenAIGateway(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)

	// Initialize services
	chatService := chat.NewService(store, gw, logger)
	leadService := lead.NewService(store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the HTTP server
	if err := server.Start(ctx, server.Options{
		Chat:   chatService,
		Leads:  leadService,
		Logger: logger,
		Port:   cfg.Server.Port,
	}); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
