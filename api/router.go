package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jacentio/justine/internal/metrics"
	"github.com/jacentio/justine/model"
)

// ProductService is the product repository as used by the HTTP layer.
type ProductService interface {
	GetByID(ctx context.Context, id int) (*model.Product, error)
	GetAll(ctx context.Context) ([]model.Product, error)
	Add(ctx context.Context, product model.Product) (*model.Product, error)
	Update(ctx context.Context, product model.Product) (*model.Product, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// BasketService is the basket repository as used by the HTTP layer.
type BasketService interface {
	GetByID(ctx context.Context, id int) (*model.Basket, error)
	GetAll(ctx context.Context) ([]model.Basket, error)
	GetByCustomer(ctx context.Context, customer string) ([]model.Basket, error)
	Add(ctx context.Context, basket model.Basket) (*model.Basket, error)
	Update(ctx context.Context, basket model.Basket) (*model.Basket, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// OrderService is the order repository as used by the HTTP layer.
type OrderService interface {
	GetByID(ctx context.Context, id int) (*model.Order, error)
	GetAll(ctx context.Context) ([]model.Order, error)
	GetByCustomer(ctx context.Context, customer string) ([]model.Order, error)
	Add(ctx context.Context, order model.Order) (*model.Order, error)
	Update(ctx context.Context, order model.Order) (*model.Order, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// Config holds the dependencies of the router.
type Config struct {
	Products ProductService
	Baskets  BasketService
	Orders   OrderService

	// Logger defaults to zap.NewNop().
	Logger *zap.Logger

	// Metrics enables request instrumentation and GET /metrics when set.
	Metrics *metrics.HTTPMetrics

	// AllowedOrigins for CORS. Default: any origin.
	AllowedOrigins []string

	// Timeout bounds each request. Default: 30s.
	Timeout time.Duration
}

// NewRouter builds the HTTP handler serving the products, baskets and orders routes.
func NewRouter(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	validate := NewValidator()

	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(chimiddleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(cfg.Timeout))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/healthz", healthCheck)
	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	router.Route("/products", func(r chi.Router) {
		h := &productHandler{products: cfg.Products, validate: validate, logger: logger}
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})

	router.Route("/baskets", func(r chi.Router) {
		h := &basketHandler{baskets: cfg.Baskets, validate: validate, logger: logger}
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/customer/{name}", h.byCustomer)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})

	router.Route("/orders", func(r chi.Router) {
		h := &orderHandler{orders: cfg.Orders, validate: validate, logger: logger}
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/customer/{name}", h.byCustomer)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})

	return router
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// requestID propagates X-Request-ID or assigns a new UUID, and makes it
// available through chi's middleware.GetReqID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
