package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/sumifun/order-intake-api/internal/config"
	"github.com/sumifun/order-intake-api/internal/database"
	"github.com/sumifun/order-intake-api/internal/repository"
	"github.com/sumifun/order-intake-api/internal/service"
	"github.com/sumifun/order-intake-api/internal/session"
	"github.com/sumifun/order-intake-api/pkg/kafka"
	"github.com/sumifun/order-intake-api/pkg/logger"
)

type Server struct {
	config       *config.Config
	logger       logger.Logger
	router       *mux.Router
	httpServer   *http.Server
	db           *database.Database
	orderService *service.OrderService
	sessions     *session.Store
	producer     *kafka.Producer
}

// NewServer creates a new API server with the given configuration and logger.
func NewServer(cfg *config.Config, logger logger.Logger) (*Server, error) {
	r := mux.NewRouter()
	db, err := database.New(cfg.DBPath, logger)

	if err != nil {
		return nil, err
	}

	orderRepo := repository.NewOrderRepository(db, logger)

	// Event notifications are optional; without brokers the service simply
	// never publishes.
	var producer *kafka.Producer
	var publisher service.EventPublisher

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, logger)

		if err != nil {
			// Non-fatal: order intake must keep working without the broker.
			logger.Error("Failed to create Kafka producer, notifications disabled", "error", err)
		} else {
			publisher = producer
		}
	}

	orderService := service.NewOrderService(orderRepo, publisher, logger)

	server := &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:       logger,
		config:       cfg,
		db:           db,
		orderService: orderService,
		sessions:     session.NewStore(cfg.Auth.SessionTTL),
		producer:     producer,
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			s.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database connection", "error", err)
	}

	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all the routes for our API
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)

	// Order API
	s.router.HandleFunc("/api/orders", s.createOrderHandler).Methods(http.MethodPost)
	s.router.HandleFunc("/api/orders", s.getOrdersHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/api/orders/search", s.searchOrdersHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/api/orders/export", s.exportOrdersHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/api/orders/{order_id}/status", s.updateOrderStatusHandler).Methods(http.MethodPut)

	// Admin session
	s.router.HandleFunc("/api/login", s.loginHandler).Methods(http.MethodPost)
	s.router.HandleFunc("/api/logout", s.logoutHandler).Methods(http.MethodPost)

	// Static pages; anything unmatched falls back to the landing page so
	// the front end can handle its own routes.
	s.router.HandleFunc("/", s.servePage("index.html")).Methods(http.MethodGet)
	s.router.HandleFunc("/orders", s.servePage("orders_viewer.html")).Methods(http.MethodGet)
	s.router.NotFoundHandler = s.withMiddleware(s.servePage("index.html"))
}

// servePage serves a file from the configured static directory.
func (s *Server) servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(s.config.StaticDir, name))
	}
}

// withMiddleware wraps a handler with the server middleware chain. Needed
// for the not-found handler, which mux does not route through router.Use.
func (s *Server) withMiddleware(h http.Handler) http.Handler {
	return s.loggingMiddleware(s.recoveryMiddleware(h))
}

// Middleware for logging requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"remoteAddr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware converts a panic inside any handler into a logged
// JSON failure response. A single bad request must never take down the
// serving loop.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("Recovered from panic in handler",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				s.respondWithJSON(w, http.StatusInternalServerError, apiResponse{
					Success: false,
					Message: "Internal server error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
