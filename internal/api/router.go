// Package api assembles the HTTP surface: routing, middleware and handler
// wiring.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/stylemuse/shopassist/internal/api/handlers"
	"github.com/stylemuse/shopassist/internal/api/middleware"
	"github.com/stylemuse/shopassist/internal/auth"
	"github.com/stylemuse/shopassist/internal/cache"
	"github.com/stylemuse/shopassist/internal/catalog"
	"github.com/stylemuse/shopassist/internal/chat"
	"github.com/stylemuse/shopassist/internal/config"
	"github.com/stylemuse/shopassist/internal/docservice"
	"github.com/stylemuse/shopassist/internal/embedding"
	"github.com/stylemuse/shopassist/internal/guide"
	"github.com/stylemuse/shopassist/internal/llm"
	"github.com/stylemuse/shopassist/internal/queue"
	"github.com/stylemuse/shopassist/internal/stylist"
	"github.com/stylemuse/shopassist/internal/usage"
	"github.com/stylemuse/shopassist/internal/vectorstore"
	"github.com/stylemuse/shopassist/internal/webhook"
)

type Router struct {
	mux     *chi.Mux
	db      *pgxpool.Pool
	redis   *redis.Client
	cfg     *config.Config
	authSvc *auth.Service
	authMW  *auth.Middleware
	llmGW   llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	authSvc := auth.NewService(db, cfg.Auth.JWTSecret)
	return &Router{
		mux:     chi.NewRouter(),
		db:      db,
		redis:   rdb,
		cfg:     cfg,
		authSvc: authSvc,
		authMW:  auth.NewMiddleware(db, authSvc, cfg.Auth.APIKeyHeader),
		llmGW:   llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	redisCache := cache.New(rt.redis)
	catalogClient := catalog.NewClient(rt.cfg.Catalog, redisCache)
	analyzer := stylist.NewAnalyzer(rt.llmGW, rt.cfg.LLM.DefaultModel, rt.cfg.LLM.VisionModel)
	embedder := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbeddingModel)
	vectors := vectorstore.New(rt.db)
	usageSvc := usage.NewService(rt.db)
	chatSvc := chat.NewService(rt.db, analyzer, catalogClient, embedder, vectors, usageSvc, rt.cfg.LLM)

	docsClient := docservice.NewClient(rt.cfg.DocService)
	dispatcher := webhook.NewDispatcher(rt.db)
	webhookSvc := webhook.NewService(rt.db, dispatcher)
	guideSvc := guide.NewService(rt.db, docsClient, webhookSvc, rt.cfg.Guide)
	queueClient := queue.NewClient(rt.cfg.Redis)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMW.Authenticate)

		// Chat routes
		chatH := handlers.NewChatHandler(chatSvc)
		r.Post("/chat", chatH.Turn)
		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", chatH.ListConversations)
			r.Get("/{id}/messages", chatH.Messages)
		})

		// Product routes
		productH := handlers.NewProductHandler(catalogClient)
		r.Get("/products/search", productH.Search)

		// Guide routes
		guideH := handlers.NewGuideHandler(guideSvc, chatSvc, queueClient)
		r.Route("/guides", func(r chi.Router) {
			r.Post("/", guideH.Generate)
			r.Get("/", guideH.List)
			r.Get("/{id}", guideH.Get)
			r.Get("/{id}/artifacts/{kind}", guideH.DownloadArtifact)
		})

		// Webhook routes
		webhookH := handlers.NewWebhookHandler(webhookSvc)
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/", webhookH.Create)
			r.Get("/", webhookH.List)
			r.Delete("/{id}", webhookH.Delete)
		})

		// Account routes
		accountH := handlers.NewAccountHandler(rt.authSvc, usageSvc)
		r.Route("/account", func(r chi.Router) {
			r.Post("/keys", accountH.CreateAPIKey)
			r.Get("/keys", accountH.ListAPIKeys)
			r.Delete("/keys/{id}", accountH.DeleteAPIKey)
			r.Get("/usage", accountH.Usage)
		})
	})

	return r
}
