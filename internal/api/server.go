package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"venuehub/internal/auth"
	"venuehub/internal/cache"
	"venuehub/internal/config"
	"venuehub/internal/database"
	"venuehub/internal/external"
	"venuehub/internal/handlers"
	"venuehub/internal/logger"
	"venuehub/internal/messaging"
	"venuehub/internal/metrics"
	"venuehub/internal/middleware"
	"venuehub/internal/notify"
	"venuehub/internal/repository"
	"venuehub/internal/search"
	"venuehub/internal/service"

	"github.com/gin-gonic/gin"
)

const serviceName = "venuehub-api"

// Server owns the HTTP router and every connection the API holds open
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	redis    *cache.RedisClient
	search   *search.ElasticsearchClient
	nats     *messaging.NATSClient
	inline   *notify.InlinePublisher
	tokens   *auth.TokenManager
	payments *external.PaymentClient
	services *service.Services
	repos    *repository.Repositories

	closeNotifications func(context.Context) error
}

// NewServer connects to the backing stores and wires the API. Connections
// opened before a failure are closed again.
func NewServer(ctx context.Context, cfg *config.Config) (s *Server, err error) {
	gin.SetMode(cfg.GinMode)
	handlers.RegisterValidators()

	s = &Server{config: cfg}
	defer func() {
		if err != nil {
			_ = s.Cleanup()
			s = nil
		}
	}()

	s.db, err = database.Connect(cfg.Database)
	if err != nil {
		return s, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err = s.db.RunMigrations(); err != nil {
		return s, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.redis, err = cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return s, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s.repos = repository.NewRepositories(s.db)
	notifications, closeNotifications, err := repository.OpenNotificationStore(ctx, s.db,
		cfg.Notifications.Store, cfg.Notifications.MongoURI, cfg.Notifications.MongoDatabase)
	if err != nil {
		return s, err
	}
	s.repos.WithNotificationStore(notifications)
	s.closeNotifications = closeNotifications

	var index service.VenueIndex
	if cfg.Elasticsearch.Enabled() {
		es, esErr := search.NewElasticsearchClient(cfg.Elasticsearch)
		if esErr != nil {
			logger.Get().Warn("Venue search index unavailable, searching the database", "error", esErr)
		} else {
			s.search = es
			index = es
		}
	}

	mailer := external.NewMailer(cfg.Mail)
	s.payments = external.NewPaymentClient(cfg.Payment)
	s.tokens = auth.NewTokenManager(cfg.Auth)

	var publisher service.EventPublisher
	switch cfg.Events.Transport {
	case "nats":
		s.nats, err = messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			return s, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = s.nats
	case "", "inline":
		dispatcher := notify.NewDispatcher(s.repos.Identities, notifications, mailer, cfg.AppBaseURL)
		s.inline = notify.NewInlinePublisher(dispatcher, cfg.Events.DispatchTimeout)
		publisher = s.inline
	default:
		return s, fmt.Errorf("unknown events transport %q", cfg.Events.Transport)
	}

	s.services = service.NewServices(s.repos, service.Dependencies{
		Tokens:         s.tokens,
		OTPs:           s.redis,
		Revoker:        s.redis,
		Mailer:         mailer,
		Gateway:        s.payments,
		Publisher:      publisher,
		Index:          index,
		GatewayTimeout: cfg.Payment.Timeout,
		Currency:       cfg.Payment.Currency,
		OTPTTL:         cfg.Auth.OTPTTL,
	})

	s.router = gin.New()
	s.router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.Metrics(),
	)
	s.setupRoutes()

	return s, nil
}

// setupRoutes mounts the API, health and metrics endpoints
func (s *Server) setupRoutes() {
	var verifier handlers.SignatureVerifier
	if s.config.Payment.SecretKey != "" {
		verifier = s.payments
	}

	h := handlers.NewHandlers(s.services, verifier)
	h.RegisterRoutes(s.router, middleware.Auth(s.tokens, s.redis))

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// healthCheck reports the state of each backing store
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	db := s.db.HealthCheck(ctx)
	if db.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	checks := gin.H{"database": db}
	if err := s.redis.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		checks["redis"] = gin.H{"status": "unhealthy", "error": err.Error()}
	} else {
		checks["redis"] = gin.H{"status": "healthy"}
	}
	if s.search != nil {
		// The index is optional; a failure degrades search but not the API.
		if err := s.search.HealthCheck(ctx); err != nil {
			checks["search"] = gin.H{"status": "degraded", "error": err.Error()}
		} else {
			checks["search"] = gin.H{"status": "healthy"}
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": serviceName,
		"checks":  checks,
	})
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Cleanup waits for in-process event delivery and closes connections
func (s *Server) Cleanup() error {
	var errs []error

	if s.inline != nil {
		_ = s.inline.Close()
	}
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
			errs = append(errs, err)
		}
	}
	if s.closeNotifications != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.closeNotifications(ctx); err != nil {
			logger.Get().Error("Error closing notification store", "error", err)
			errs = append(errs, err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Get().Error("Error closing redis connection", "error", err)
			errs = append(errs, err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
