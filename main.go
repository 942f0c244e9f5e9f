package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hustlr/config"
	"hustlr/database"
	"hustlr/database/repository"
	"hustlr/handlers"
	"hustlr/middleware"
	"hustlr/routes"
	"hustlr/services/booking"
	"hustlr/services/chat"
	"hustlr/services/geocode"
	ai "hustlr/services/intelligence"
	"hustlr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Document store.
	var (
		store *database.Store
		repos *repository.Repositories
		err   error
	)
	if cfg.UseMemoryStore() {
		logger.Warn("main: using in-memory store, data is lost on restart")
		repos = repository.NewMemoryRepositories()
	} else {
		store, err = database.Connect(rootCtx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		repos = repository.NewMongoRepositories(store, logger)
		logger.Info("main: connected to MongoDB", zap.String("database", cfg.DatabaseName))
	}

	// Redis is optional. Without it turns run unlocked and the catalog is not cached.
	redisClients, err := utils.InitRedis(cfg)
	if err != nil {
		logger.Warn("main: redis unavailable, continuing without locks and cache", zap.Error(err))
		redisClients = &utils.RedisClients{}
	}

	var pinger utils.Pinger
	if store != nil {
		pinger = store
	}
	utils.StartHealthMonitor(rootCtx, 30*time.Second, pinger, redisClients.All())

	// Text generation.
	generator, gemini, err := ai.NewGenerator(rootCtx, cfg, logger)
	if err != nil {
		logger.Warn("main: remote generator unavailable, using local replies", zap.Error(err))
		generator, gemini = ai.LocalGenerator{}, nil
	}

	// Booking services.
	availability := &booking.Availability{Bookings: repos.Bookings}
	ranker := booking.NewRanker(repos.Providers, availability, cfg.SlotDuration(), cfg.SearchRadiusKm, logger)
	committer := booking.NewCommitter(repos.Bookings, availability, ranker, cfg.SlotDuration(), logger)
	bookingService := booking.NewService(repos.Bookings, availability, ranker, logger)
	catalog := booking.NewCatalog(repos.Providers, redisClients.Cache, logger)

	var locker chat.Locker = chat.NoopLocker{}
	if redisClients.Lock != nil {
		locker = chat.NewRedisLocker(redisClients.Lock)
	}

	assistant := chat.NewAssistant(chat.Deps{
		Users:         repos.Users,
		Providers:     repos.Providers,
		Bookings:      repos.Bookings,
		Conversations: repos.Conversations,
		Ranker:        ranker,
		Committer:     committer,
		Catalog:       catalog,
		Generator:     generator,
		Geocoder:      geocode.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderTimeout()),
		Locker:        locker,
		Logger:        logger,
		Location:      cfg.Location(),
	})

	// Handlers.
	chatHandler := handlers.NewChatHandler(assistant)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	var lister ai.ModelLister
	if gemini != nil {
		lister = gemini
	}
	modelsHandler := handlers.NewModelsHandler(lister)

	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:            chatHandler.HandleChat,
		CreateBookingHandler:   bookingHandler.CreateBooking,
		SearchProvidersHandler: bookingHandler.SearchProviders,
		ListModelsHandler:      modelsHandler.ListModels,
		HealthHandler:          handlers.Health,
	}

	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if gemini != nil {
		if err := gemini.Close(); err != nil {
			logger.Warn("main: failed to close Gemini client", zap.Error(err))
		}
	}
	if store != nil {
		if err := store.Close(ctx); err != nil {
			logger.Warn("main: failed to close MongoDB", zap.Error(err))
		}
	}
	redisClients.Close()

	logger.Sugar().Info("main: server stopped gracefully")
}
