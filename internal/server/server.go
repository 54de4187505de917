package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"veggiemarket/internal/catalog"
	"veggiemarket/internal/config"
	"veggiemarket/internal/database"
	custommiddleware "veggiemarket/internal/middleware"
	"veggiemarket/internal/service"
	"veggiemarket/internal/store"
	"veggiemarket/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      *sql.DB
	redis   *redis.Client
	catalog *catalog.Controller
}

// NewServer wires the store client, catalog controller and services into a
// chi router. The controller must already be initialized; the server only
// serves its state.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, controller *catalog.Controller) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	if redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: 120,
			Window:            time.Minute,
			KeyPrefix:         "veggiemarket:ratelimit",
		}, logger))
	}

	// Health reports server liveness plus store connectivity; a down store
	// is not an error here, the catalog degrades instead.
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"mode":   controller.Mode(),
			"store":  database.Health(r.Context(), db),
		})
	})

	client := store.New(db)
	users := store.NewUsers(client)
	orders := store.NewOrders(client)

	authService := service.NewAuthService(users, controller, cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpiry)*time.Minute)
	cartService := service.NewCartService()
	orderService := service.NewOrderService(orders, controller, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	buyerID, err := uuid.Parse(cfg.Session.BuyerID)
	if err != nil {
		logger.Warn("Invalid session buyer id, using nil", zap.String("buyer_id", cfg.Session.BuyerID))
		buyerID = uuid.Nil
	}

	transport.NewAuthHandler(authService, logger).RegisterRoutes(router)
	transport.NewCatalogHandler(controller, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCartHandler(cartService, controller, logger).RegisterRoutes(router, authMiddleware)
	transport.NewOrderHandler(orderService, cartService, buyerID, logger).RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		catalog: controller,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
