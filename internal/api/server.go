package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"busline/internal/auth"
	"busline/internal/cache"
	"busline/internal/config"
	"busline/internal/database"
	"busline/internal/external"
	"busline/internal/handlers"
	"busline/internal/jobs"
	"busline/internal/logger"
	"busline/internal/messaging"
	"busline/internal/middleware"
	"busline/internal/repository"
	"busline/internal/search"
	"busline/internal/service"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	search   *search.ElasticsearchClient
	services *service.Services
	sweeper  *jobs.SessionExpirationJob
}

// NewServer создает новый экземпляр сервера. PostgreSQL обязателен,
// NATS, Valkey и Elasticsearch подключаются если доступны.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &Server{config: cfg, db: db}

	deps := service.Dependencies{
		Provider: external.NewAuthClient(cfg.Auth),
		Verifier: auth.NewTokenVerifier(cfg.Auth.JWTSecret),
	}

	if natsClient, err := messaging.NewNATSClient(cfg.NATS); err != nil {
		logger.Get().Warn("NATS unavailable, domain events disabled", "error", err)
	} else {
		s.nats = natsClient
		deps.Publisher = natsClient
	}

	if valkeyClient, err := cache.NewValkeyClient(ctx, cfg.Valkey); err != nil {
		logger.Get().Warn("Valkey unavailable, sessions are kept in memory only", "error", err)
	} else {
		s.valkey = valkeyClient
		deps.Persister = valkeyClient
		deps.Cache = valkeyClient
	}

	if esClient, err := search.NewElasticsearchClient(ctx, cfg.Elasticsearch); err != nil {
		logger.Get().Warn("Elasticsearch unavailable, free-text trip search disabled", "error", err)
	} else {
		s.search = esClient
		deps.Searcher = esClient
	}

	s.services = service.NewServices(repository.NewRepositories(db), deps, cfg.Session)
	s.router = newRouter(cfg, s.services)
	s.router.GET("/health", s.healthCheck)

	s.sweeper = jobs.NewSessionExpirationJob(s.services.AppSessions, cfg.Session.SweepInterval)
	s.sweeper.Start(ctx)

	return s, nil
}

func newRouter(cfg *config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	setupRoutes(router, handlers.NewHandlers(services), services.AppSessions)
	return router
}

// setupRoutes настраивает все API роуты
func setupRoutes(router *gin.Engine, h *handlers.Handlers, sessions middleware.AppSessionResolver) {
	router.POST("/api/app-sessions", h.CreateAppSession)

	api := router.Group("/api")
	api.Use(middleware.AppSession(sessions))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.SignUp)
			authGroup.POST("/signin", h.SignIn)
			authGroup.POST("/signout", h.SignOut)
			authGroup.POST("/refresh", h.RefreshSession)
			authGroup.POST("/reload", h.ReloadUser)
			authGroup.POST("/reset-password", h.ResetPassword)
			authGroup.GET("/me", h.Me)
		}

		trips := api.Group("/trips")
		{
			trips.GET("", h.ListTrips)
			trips.GET("/:id", h.GetTrip)
			trips.GET("/:id/seats", h.GetTripSeats)
		}

		booking := api.Group("/booking")
		{
			booking.GET("", h.GetBookingFlow)
			booking.DELETE("", h.CancelBookingFlow)
			booking.POST("/start", h.StartBooking)
			booking.PUT("/seats", h.UpdateSeats)
			booking.PUT("/passengers", h.UpdatePassengers)
			booking.POST("/promo", h.ApplyPromo)
		}

		cart := api.Group("/cart")
		{
			cart.GET("", h.GetCart)
			cart.DELETE("", h.ClearCart)
			cart.POST("/items", h.AddToCart)
			cart.DELETE("/items/:id", h.RemoveFromCart)
			cart.POST("/checkout", middleware.RequireIdentity(), h.Checkout)
		}

		bookings := api.Group("/bookings", middleware.RequireIdentity())
		{
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id/ticket", h.DownloadTicket)
		}

		admin := api.Group("/admin", middleware.RequireIdentity(), middleware.RequireRole("admin"))
		{
			admin.POST("/promos", h.CreatePromo)
		}
	}
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealth := s.db.HealthCheck(ctx)

	components := gin.H{"database": dbHealth}
	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	if s.valkey != nil {
		components["valkey"] = componentStatus(s.valkey.Ping(ctx))
	}
	if s.search != nil {
		components["elasticsearch"] = componentStatus(s.search.HealthCheck(ctx))
	}

	c.JSON(status, gin.H{
		"status":       http.StatusText(status),
		"service":      "busline-api",
		"version":      "1.0.0",
		"app_sessions": s.services.AppSessions.Len(),
		"components":   components,
		"timestamp":    time.Now().UTC(),
	})
}

func componentStatus(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.services != nil {
		s.services.AppSessions.Close()
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
