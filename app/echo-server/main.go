package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrikoSearch/app/echo-server/router"
	"agrikoSearch/business/behavior"
	"agrikoSearch/business/expansion"
	"agrikoSearch/business/search"
	"agrikoSearch/internal/middleware"
	openaiRepo "agrikoSearch/internal/repository/openai"
	psqlRepo "agrikoSearch/internal/repository/postgres"
	redisRepo "agrikoSearch/internal/repository/redis"
	"agrikoSearch/internal/repository/vectorapi"
	"agrikoSearch/internal/rest"
	"agrikoSearch/pkg/config"
	"agrikoSearch/pkg/database"
	redisdb "agrikoSearch/pkg/database/redis"
	"agrikoSearch/pkg/logger"
	"agrikoSearch/pkg/metrics"
	"agrikoSearch/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Agriko Search", "version", cfg.App.Version)

	metrics.Init()
	utils.InitJWT(cfg.JWT.SecretKey)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer func() {
		_ = redisdb.CloseRedisClient(redisClient)
	}()

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	keywordRepo := psqlRepo.NewKeywordRepository(db)
	eventRepo := psqlRepo.NewAnalyticsRepository(db)
	aggregateRepo := redisRepo.NewAnalyticsRepository(redisClient)

	var semanticRepo search.SemanticSearcher
	switch cfg.Search.SemanticBackend {
	case "http":
		semanticRepo = vectorapi.NewVectorAPIRepository(vectorapi.VectorAPIConfig{
			BaseURL: cfg.VectorAPI.BaseURL,
			APIKey:  cfg.VectorAPI.APIKey,
		})
	default:
		embedder := openaiRepo.NewEmbedder(openaiRepo.EmbedderConfig{
			APIKey: cfg.OpenAI.APIKey,
			Model:  cfg.OpenAI.EmbeddingModel,
		})
		semanticRepo = psqlRepo.NewSemanticRepository(db, embedder)
	}

	logger.Info("Semantic backend ready", "backend", cfg.Search.SemanticBackend)

	// Init behavior store and background tracking
	profileStore := behavior.NewStore(behavior.StoreConfig{
		MaxProfiles: cfg.Search.MaxProfiles,
		HistoryCap:  cfg.Search.HistoryCap,
		DecayFactor: cfg.Search.DecayFactor,
	}, nil)

	tracker := behavior.NewTracker(profileStore, eventRepo, aggregateRepo, productRepo, behavior.TrackerConfig{
		QueueSize:    cfg.Search.TrackingQueueSize,
		WriteTimeout: cfg.Search.TrackingTimeout,
	}, nil)
	tracker.Start()
	defer tracker.Stop()

	sweeperDone := make(chan struct{})
	profileStore.StartSweeper(sweeperDone, time.Hour, cfg.Search.ProfileMaxAge)
	defer close(sweeperDone)

	// Init service
	expander := expansion.NewExpander()
	booster := search.NewBooster(profileStore, cfg.Search.PersonalizeCap, nil)

	searchCfg := search.DefaultConfig()
	searchCfg.SemanticWeight = cfg.Search.SemanticWeight
	searchCfg.KeywordWeight = cfg.Search.KeywordWeight
	searchCfg.SemanticTimeout = cfg.Search.SemanticTimeout
	searchCfg.KeywordTimeout = cfg.Search.KeywordTimeout
	searchCfg.MaxResults = cfg.Search.MaxResults
	searchCfg.PersonalizeCap = cfg.Search.PersonalizeCap

	searchService := search.NewService(semanticRepo, keywordRepo, productRepo, expander, booster, tracker, searchCfg, nil)
	suggester := search.NewSuggester(aggregateRepo)

	// Init handler
	searchHandler := rest.NewSearchHandler(searchService, suggester)
	analyticsHandler := rest.NewAnalyticsHandler(tracker, cfg.Search.ProfileMaxAge)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	trackLimiter := middleware.RateLimiter(rate.Limit(20), 40, 10000)
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	api := e.Group("/api/v1")
	router.SetupSearchRoutes(api, searchHandler)
	router.SetupAnalyticsRoutes(api, analyticsHandler, trackLimiter, authRequired, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
