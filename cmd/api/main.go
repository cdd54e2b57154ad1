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

	"github.com/sigapbencana/rambu_api/internal/cache"
	"github.com/sigapbencana/rambu_api/internal/config"
	"github.com/sigapbencana/rambu_api/internal/database"
	"github.com/sigapbencana/rambu_api/internal/handler"
	"github.com/sigapbencana/rambu_api/internal/middleware"
	"github.com/sigapbencana/rambu_api/internal/repository"
	"github.com/sigapbencana/rambu_api/internal/service"
	"github.com/sigapbencana/rambu_api/internal/worker"
)

// main is the application entrypoint for the rambu asset API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting rambu api")

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

	// 3c. Initialize geocode cache
	geoCache := cache.NewGeocodeCache(redisClient, cfg.Geo.CacheTTL, cfg.Geo.CachePrecision)

	// 4. Initialize repositories
	locationRepo := repository.NewLocationRepository(db)
	rambuRepo := repository.NewRambuRepository(db)
	userRepo := repository.NewUserRepository(db)
	refRepo := repository.NewRefRepository(db)

	// 5. Initialize services
	authSvc := service.NewAuthService(userRepo)
	geocodeSvc := service.NewGeocodeService(locationRepo, geoCache)
	rambuSvc := service.NewRambuService(rambuRepo, cfg.Upload.Dir, cfg.Upload.MaxPhotos)

	// 6. Initialize handlers
	loginLimiter := middleware.NewLoginRateLimiter()
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(db, redisClient),
		Location: handler.NewLocationHandler(locationRepo),
		Geocode:  handler.NewGeocodeHandler(geocodeSvc),
		Rambu:    handler.NewRambuHandler(rambuSvc),
		Ref:      handler.NewRefHandler(refRepo),
		User:     handler.NewUserHandler(authSvc, userRepo, loginLimiter),
		Report:   handler.NewReportHandler(rambuSvc),
	}

	// 7. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Static("/uploads", cfg.Upload.Dir)
	setupRoutes(router, handlers, jwtMw)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewBoundaryWarmWorker(geocodeSvc, cfg.Worker.BoundaryWarmInterval).Start(ctx)

	// 11. Start HTTP server
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

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
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
	Location *handler.LocationHandler
	Geocode  *handler.GeocodeHandler
	Rambu    *handler.RambuHandler
	Ref      *handler.RefHandler
	User     *handler.UserHandler
	Report   *handler.ReportHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public map feed and region hierarchy
	v1 := router.Group("/v1")
	{
		v1.GET("/rambu", handlers.Rambu.List)
		v1.GET("/rambu-detail/:id", handlers.Rambu.GetDetail)
		v1.POST("/ref/geografis", handlers.Geocode.Resolve)

		v1.GET("/locations/provinces", handlers.Location.GetProvinces)
		v1.GET("/locations/cities/:prov_id", handlers.Location.GetCities)
		v1.GET("/locations/districts/:city_id", handlers.Location.GetDistricts)
		v1.GET("/locations/subdistricts/:district_id", handlers.Location.GetSubDistricts)
		v1.GET("/locations/province-geojson/:prov_id", handlers.Location.GetProvinceBoundary)

		v1.GET("/ref/categories", handlers.Ref.GetCategories)
		v1.GET("/ref/model", handlers.Ref.GetModels)
		v1.GET("/ref/costsource", handlers.Ref.GetCostSources)
		v1.GET("/ref/disaster-types", handlers.Ref.GetDisasterTypes)

		v1.POST("/users/login", handlers.User.Login)
	}

	// Console routes (protected with JWT)
	console := router.Group("/v1")
	console.Use(jwtMiddleware.Handle())
	{
		console.GET("/rambu-crud", handlers.Rambu.ListPaged)
		console.POST("/rambu", handlers.Rambu.Create)
		console.PATCH("/rambu/:id", handlers.Rambu.Update)
		console.DELETE("/rambu/:id", handlers.Rambu.Delete)
		console.PUT("/rambu-status/:id", handlers.Rambu.UpdateStatus)
		console.PUT("/rambu-trash/:id", handlers.Rambu.Trash)
		console.POST("/rambu-simulasi", handlers.Rambu.CreateSimulation)

		console.GET("/report/summary", handlers.Report.GetSummary)

		console.POST("/users/logout", handlers.User.Logout)
		console.GET("/users/me", handlers.User.Me)
		console.GET("/users", handlers.User.List)
		console.POST("/users", handlers.User.Create)
		console.PATCH("/users/:id", handlers.User.Update)
		console.DELETE("/users/:id", handlers.User.Delete)
		console.GET("/users/satuan-kerja", handlers.Ref.GetSatuanKerja)
	}
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
