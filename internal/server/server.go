// Package server собирает HTTP сервер общего хранилища карт:
// маршруты, middleware, хранилище, часы записи и mDNS объявление.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/mapboard/internal/config"
	"github.com/iudanet/mapboard/internal/crdt"
	"github.com/iudanet/mapboard/internal/discovery"
	"github.com/iudanet/mapboard/internal/server/handlers"
	"github.com/iudanet/mapboard/internal/server/hub"
	"github.com/iudanet/mapboard/internal/server/middleware"
	"github.com/iudanet/mapboard/internal/server/storage"
	"github.com/iudanet/mapboard/internal/server/storage/memory"
	"github.com/iudanet/mapboard/internal/server/storage/sqlite"
)

const readHeaderTimeout = 10 * time.Second

// Store объединяет хранилище snapshot и токенов редактора
type Store interface {
	storage.SnapshotStorage
	storage.TokenStorage
}

// OpenStore открывает хранилище, выбранное в конфигурации
func OpenStore(ctx context.Context, cfg *config.Server) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.StorageDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Server HTTP сервер mapboard
type Server struct {
	cfg        *config.Server
	logger     *slog.Logger
	store      Store
	hub        *hub.Hub
	clock      *crdt.ServerClock
	limiter    *middleware.RateLimiter
	handler    http.Handler
	advertiser *discovery.Advertiser
	version    string
}

// New создает сервер поверх открытого хранилища. Часы записи продолжаются
// с наибольшей сохраненной метки, чтобы новые записи не проигрывали старым.
func New(ctx context.Context, cfg *config.Server, store Store, logger *slog.Logger, version string) (*Server, error) {
	last, err := store.LastTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last timestamp: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		hub:     hub.New(logger),
		clock:   crdt.NewServerClock(),
		version: version,
	}
	s.clock.Observe(last)

	if cfg.AuthSecret != "" {
		if n, err := store.DeleteExpiredTokens(ctx); err != nil {
			logger.Warn("Failed to delete expired tokens", "error", err)
		} else if n > 0 {
			logger.Info("Expired editor tokens deleted", "count", n)
		}
	}

	s.handler = s.routes()

	logger.Debug("Server clock seeded", "last_timestamp", last)
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	maps := handlers.NewMapsHandler(s.logger, s.store, s.clock, s.hub)
	maps.SetMaxBodyBytes(s.cfg.MaxBodyBytes)
	watch := handlers.NewWatchHandler(s.logger, s.store, s.hub)
	health := handlers.NewHealthHandler(s.logger, s.store, s.version)

	var put http.Handler = http.HandlerFunc(maps.Put)
	if s.cfg.AuthSecret != "" {
		jwtConfig := handlers.JWTConfig{Secret: []byte(s.cfg.AuthSecret), TokenTTL: s.cfg.TokenTTL}
		auth := middleware.AuthMiddleware(s.logger, jwtConfig, s.store)

		put = auth(put)
		mux.Handle("GET /api/v1/token", auth(http.HandlerFunc(handlers.NewTokenHandler(s.logger).Info)))
	}
	if s.cfg.RateLimitWrites > 0 {
		s.limiter = middleware.NewRateLimiter(s.cfg.RateLimitWrites, s.cfg.RateLimitWindow, s.logger)
		put = s.limiter.Middleware(put)
	}

	mux.Handle("PUT /api/v1/maps/{key}", put)
	mux.HandleFunc("GET /api/v1/maps/{key}", maps.Get)
	mux.HandleFunc("GET /api/v1/maps", maps.List)
	mux.HandleFunc("GET /api/v1/maps/{key}/watch", watch.Watch)
	mux.HandleFunc("GET /api/v1/health", health.Health)

	return middleware.Chain(mux,
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger, "/api/v1/health"),
	)
}

// Handler возвращает корневой http.Handler сервера
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает cfg.HTTPAddr до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.HTTPAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает соединения ln до отмены ctx, затем корректно
// завершает работу: закрывает наблюдателей, ждет активные запросы
// не дольше cfg.ShutdownTimeout и снимает mDNS объявление.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	if s.cfg.MDNSEnabled {
		if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
			adv, err := discovery.Advertise(tcp.Port, s.version, s.logger)
			if err != nil {
				s.logger.Warn("mDNS advertisement disabled", "error", err)
			} else {
				s.advertiser = adv
			}
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	s.logger.Info("Server started", "addr", ln.Addr().String(), "version", s.version,
		"storage", s.cfg.StorageDriver, "auth", s.cfg.AuthSecret != "")

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	s.shutdown(srv)
	return runErr
}

func (s *Server) shutdown(srv *http.Server) {
	s.logger.Info("Shutting down server")

	// Websocket соединения не отслеживаются http.Server, их закрывает hub
	s.hub.Close()

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("Graceful shutdown failed", "error", err)
	}
	if err := s.advertiser.Shutdown(); err != nil {
		s.logger.Warn("Failed to stop mDNS advertisement", "error", err)
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}

	s.logger.Info("Server stopped")
}
