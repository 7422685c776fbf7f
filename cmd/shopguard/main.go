// Command shopguard runs a storefront API front door wired with goShield: edge admission
// and CSRF cookies, login with password upgrade, refresh rotation, logout and a pair of
// admin privacy endpoints.
//
// Configuration is read from SHIELD_* environment variables. Without SHIELD_REDIS_ADDR an
// embedded miniredis instance backs sessions and limiters. Admission is keyed on the
// first X-Forwarded-For hop; pass -trust-proxy=false when clients connect directly.
//
// Run:
//
//	go run ./cmd/shopguard -addr :8080
//
// Then:
//
//	curl -i -c jar.txt -X POST localhost:8080/login \
//	  -H 'Content-Type: application/json' \
//	  -d '{"email":"admin@shop.example","password":"correct-horse-battery"}'
//	curl -i localhost:8080/me -H "Authorization: Bearer <ACCESS_TOKEN>"
//	curl -i -b jar.txt -c jar.txt -X POST localhost:8080/refresh
//	curl -i -b jar.txt -c jar.txt -X POST localhost:8080/logout
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/logging"
	promexport "github.com/MrEthical07/goShield/metrics/export/prometheus"
	"github.com/MrEthical07/goShield/middleware"
)

func main() {
	var (
		addr          = flag.String("addr", ":8080", "listen address")
		adminEmail    = flag.String("admin-email", "admin@shop.example", "seeded admin identifier")
		adminPassword = flag.String("admin-password", "correct-horse-battery", "seeded admin password")
		trustProxy    = flag.Bool("trust-proxy", true, "key admission on X-Forwarded-For; disable when clients reach the server directly")
	)
	flag.Parse()

	cfg, err := goShield.LoadConfig()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	rdb, closeRedis, err := openRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis_init_failed", zap.Error(err))
	}
	defer closeRedis()

	users := newUserStore()
	engine, err := goShield.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(users).
		WithLogger(logger).
		Build()
	if err != nil {
		logger.Fatal("engine_build_failed", zap.Error(err))
	}
	defer engine.Close()
	engine.Start(rootCtx)

	if err := users.seed(engine, *adminEmail, *adminPassword, goShield.RoleAdmin); err != nil {
		logger.Fatal("seed_failed", zap.Error(err))
	}

	exporter := promexport.NewPrometheusExporter(engine)
	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(engine, logger, exporter.Handler(), middleware.EdgeOptions{TrustForwardedFor: *trustProxy}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("http_listen_failed", zap.String("addr", *addr), zap.Error(err))
	}
	logger.Info("http_listen_start", zap.String("addr", ln.Addr().String()))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			logger.Error("http_serve_failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown_incomplete", zap.Error(err))
	}
	logger.Info("service_stopped")
}

func openRedis(cfg goShield.RedisConfig, logger *zap.Logger) (redis.UniversalClient, func(), error) {
	if cfg.Addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		logger.Info("using embedded miniredis", zap.String("addr", mr.Addr()))
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("using redis", zap.String("addr", cfg.Addr))
	return client, func() { _ = client.Close() }, nil
}
