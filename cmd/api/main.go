package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/cache"
	"github.com/veldshoe/storefront_api/internal/config"
	"github.com/veldshoe/storefront_api/internal/database"
	"github.com/veldshoe/storefront_api/internal/handler"
	"github.com/veldshoe/storefront_api/internal/middleware"
	"github.com/veldshoe/storefront_api/internal/repository"
	"github.com/veldshoe/storefront_api/internal/service"
	"github.com/veldshoe/storefront_api/internal/utils"
	"github.com/veldshoe/storefront_api/internal/worker"
	"github.com/veldshoe/storefront_api/pkg/commerce"
	"github.com/veldshoe/storefront_api/pkg/yoco"
)

// main is the application entrypoint for the storefront API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting storefront api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Initialize external clients
	commerceClient := commerce.NewClient(commerce.Config{
		GraphQLURL:     cfg.Commerce.GraphQLURL,
		RESTBaseURL:    cfg.Commerce.RESTBaseURL,
		ConsumerKey:    cfg.Commerce.ConsumerKey,
		ConsumerSecret: cfg.Commerce.ConsumerSecret,
	})
	yocoClient := yoco.NewClient(cfg.Yoco.BaseURL, cfg.Yoco.SecretKey)

	// 5. Initialize repositories and stores
	mirrorRepo := repository.NewMirrorRepository(db)
	cartStore := cache.NewCartStore(redisClient)

	// 6. Initialize services
	facetEngine := service.NewFacetEngine(cfg.Catalog.PriceFilterCompat)
	catalogSvc := service.NewCatalogService(commerceClient, facetEngine)
	cartSvc := service.NewCartService(cartStore)
	checkoutSvc := service.NewCheckoutService(commerceClient, yocoClient, cartSvc, cfg.Yoco.Currency)
	syncSvc := service.NewSyncService(commerceClient, mirrorRepo)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(commerceClient),
		Catalog:  handler.NewCatalogHandler(catalogSvc, commerceClient, mirrorRepo),
		Cart:     handler.NewCartHandler(cartSvc),
		Checkout: handler.NewCheckoutHandler(checkoutSvc),
		Webhook:  handler.NewWebhookHandler(syncSvc, cfg.Commerce.WebhookSecret),
	}

	// 8. Initialize middleware
	sessionMw := middleware.NewSessionMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, sessionMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewSyncWorker(syncSvc, cfg.Worker.SyncInterval).Start(ctx)
	go worker.NewSessionReaper(catalogSvc, cfg.Worker.SessionReapInterval, cfg.Catalog.SessionTTL).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, sessionMiddleware *middleware.SessionMiddleware) {
	// Commerce backend webhook (signed, no session)
	router.POST("/webhook/commerce", handlers.Webhook.HandleProductEvent)

	router.GET("/v1/health", handlers.Health.GetHealth)

	// Catalog routes (session-scoped accumulation)
	catalog := router.Group("/v1/catalog")
	catalog.Use(sessionMiddleware.Handle())
	{
		catalog.GET("/products", handlers.Catalog.GetProducts)
		catalog.POST("/products/more", handlers.Catalog.LoadMore)
		catalog.GET("/products/:slug", handlers.Catalog.GetProductBySlug)
		catalog.GET("/categories", handlers.Catalog.GetCategories)
		catalog.GET("/search", handlers.Catalog.Search)
	}

	// Cart routes (session-scoped)
	cart := router.Group("/v1/cart")
	cart.Use(sessionMiddleware.Handle())
	{
		cart.GET("", handlers.Cart.GetCart)
		cart.DELETE("", handlers.Cart.ClearCart)
		cart.POST("/items", handlers.Cart.AddItem)
		cart.PUT("/items", handlers.Cart.UpdateQuantity)
		cart.DELETE("/items", handlers.Cart.RemoveItem)
	}

	// Checkout (session-scoped)
	router.POST("/v1/checkout", sessionMiddleware.Handle(), handlers.Checkout.Checkout)
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
