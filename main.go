package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"tabletalk/internal/api"
	"tabletalk/internal/config"
	"tabletalk/internal/dialogue"
	"tabletalk/internal/dyntable"
	"tabletalk/internal/history"
	"tabletalk/internal/llm"
	"tabletalk/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	db, err := storage.Open(cfg.Driver, &cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, cfg.Driver); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	chatModel, err := llm.NewChatModel(context.Background(), cfg.Provider)
	if err != nil {
		log.Fatalf("init chat model: %v", err)
	}

	dialect := storage.DialectFor(cfg.Driver)
	hist := history.NewStore(db, dialect)
	tables := dyntable.NewManager(db, dialect)
	router := dialogue.NewRouter(chatModel, hist, tables, logger)
	handlers := api.NewHandler(router, hist)

	engine := gin.Default()
	handlers.RegisterRoutes(engine)

	logger.Info("starting server", "addr", cfg.ServerAddress, "driver", cfg.Driver, "provider", cfg.Provider.Name)
	if err := engine.Run(cfg.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
