package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tienda-be/internal/config"
	"tienda-be/internal/dashboard"
	"tienda-be/internal/db"
	"tienda-be/internal/logger"
	"tienda-be/internal/metrics"
	"tienda-be/internal/middleware"
	"tienda-be/internal/orden"
	"tienda-be/internal/pago"
	"tienda-be/internal/pago/webhook"
	"tienda-be/internal/producto"
	"tienda-be/internal/usuario"
	"tienda-be/internal/wompi"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("")
		logger.L().Fatal("config", zap.Error(err))
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.Open(cfg)
	if err != nil {
		logger.L().Fatal("db", zap.Error(err))
	}
	defer database.Close()

	handler := newServer(cfg, database)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("shutdown", zap.Error(err))
	}
}

// newServer wires repositories, services and handlers into the full HTTP
// handler, middleware included. Kept apart from main so tests can drive it
// with a mock database.
func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	registry := metrics.NewRegistry()
	tokens := usuario.NewTokenManager(cfg.JWTSecret)

	usuarioRepo := usuario.NewRepository(database)
	usuarioSvc := usuario.NewService(usuarioRepo, tokens)
	usuarioHandler := usuario.NewHandler(usuarioSvc)

	productoRepo := producto.NewRepository(database)
	productoSvc := producto.NewService(productoRepo)
	productoHandler := producto.NewHandler(productoSvc)

	dashboardHandler := dashboard.NewHandler(dashboard.NewRepository(database))

	ordenSvc := orden.NewService(orden.NewRepository(database))

	gateway := wompi.NewClient(cfg.WompiPublicKey, cfg.WompiPrivateKey, cfg.WompiAPIURL)
	signer := wompi.NewSigner(cfg.WompiIntegritySecret)
	pagoRepo := pago.NewRepository(database)
	pagoSvc := pago.NewService(gateway, signer, pagoRepo, cfg.BaseURL, registry)
	pagoHandler := pago.NewHandler(pagoSvc, cfg.WompiPublicKey)

	webhookHandler := webhook.NewHandler(ordenSvc, pagoRepo, cfg.WompiEventSecret, registry)

	idempotencia := middleware.NewIdempotencyCache(24 * time.Hour)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Auth
	mux.HandleFunc("POST /api/auth/register", usuarioHandler.Register)
	mux.HandleFunc("POST /api/auth/login", usuarioHandler.Login)
	mux.HandleFunc("GET /api/auth/verify", usuarioHandler.Verify)
	mux.HandleFunc("GET /api/auth/profile", usuarioHandler.Profile)

	// Catálogo
	mux.HandleFunc("GET /api/productos", productoHandler.List)
	mux.HandleFunc("GET /api/productos/{id}", productoHandler.Get)
	mux.Handle("POST /api/productos", middleware.RequireAdmin(http.HandlerFunc(productoHandler.Create)))
	mux.Handle("PUT /api/productos/{id}", middleware.RequireAdmin(http.HandlerFunc(productoHandler.Update)))
	mux.Handle("DELETE /api/productos/{id}", middleware.RequireAdmin(http.HandlerFunc(productoHandler.Delete)))

	// Pagos PSE
	mux.HandleFunc("GET /api/pagos/config", pagoHandler.Config)
	mux.Handle("POST /api/pagos/crear-transaccion",
		idempotencia.Middleware(http.HandlerFunc(pagoHandler.CrearTransaccion)))
	mux.HandleFunc("GET /api/pagos/transaccion/{id}", pagoHandler.ConsultarTransaccion)
	mux.HandleFunc("GET /api/pagos/bancos-pse", pagoHandler.BancosPSE)
	mux.HandleFunc("POST /api/pagos/webhook", webhookHandler.WebhookHandler)

	// Panel de administración
	mux.Handle("GET /api/dashboard/estadisticas",
		middleware.RequireAdmin(http.HandlerFunc(dashboardHandler.Estadisticas)))
	mux.Handle("GET /api/dashboard/ultimas-ventas",
		middleware.RequireAdmin(http.HandlerFunc(dashboardHandler.UltimasVentas)))
	mux.Handle("GET /api/dashboard/stock-bajo",
		middleware.RequireAdmin(http.HandlerFunc(dashboardHandler.StockBajo)))
	mux.Handle("GET /api/admin/metrics",
		middleware.RequireAdmin(metricsHandler(registry)))

	limiter := middleware.NewRateLimiter()

	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Auth(tokens)(handler)
	handler = middleware.CORS(cfg.CORSOrigin)(handler)
	handler = logger.RequestIDMiddleware(handler)

	return handler
}

func metricsHandler(registry *metrics.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(registry.Snapshot())
	})
}
