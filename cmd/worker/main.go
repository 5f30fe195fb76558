package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/stylemuse/shopassist/internal/chat"
	"github.com/stylemuse/shopassist/internal/config"
	"github.com/stylemuse/shopassist/internal/database"
	"github.com/stylemuse/shopassist/internal/docservice"
	"github.com/stylemuse/shopassist/internal/guide"
	"github.com/stylemuse/shopassist/internal/queue"
	"github.com/stylemuse/shopassist/internal/queue/workers"
	"github.com/stylemuse/shopassist/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	docsClient := docservice.NewClient(cfg.DocService)
	dispatcher := webhook.NewDispatcher(db)
	webhookSvc := webhook.NewService(db, dispatcher)
	guideSvc := guide.NewService(db, docsClient, webhookSvc, cfg.Guide)

	// The guide worker only reads messages; the chat pipeline dependencies
	// stay nil here.
	chatSvc := chat.NewService(db, nil, nil, nil, nil, nil, cfg.LLM)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	guideWorker := workers.NewGuideWorker(guideSvc, chatSvc)
	registry.Register(queue.TypeGuideGenerate, asynq.HandlerFunc(guideWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
