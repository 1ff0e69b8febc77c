package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/videovox/internal/config"
	"github.com/pribylovaa/videovox/internal/service"
	"github.com/pribylovaa/videovox/internal/storage"
	"github.com/pribylovaa/videovox/internal/storage/minio"
	"github.com/pribylovaa/videovox/internal/storage/mongo"
	"github.com/pribylovaa/videovox/internal/storage/s3"
	httptransport "github.com/pribylovaa/videovox/internal/transport/http"
	"github.com/pribylovaa/videovox/internal/transport/http/handlers"
	"github.com/pribylovaa/videovox/internal/transport/http/middleware"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	// .env необязателен: без него конфиг читается из файла и окружения.
	_ = godotenv.Load()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting accounts-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	accountsStore, err := mongo.New(dbCtx, cfg.Mongo)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("mongo_connected")

	closeStore := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := accountsStore.Close(ctx); err != nil {
			log.Warn("mongo_close_failed", slog.String("err", err.Error()))
		}
	}

	mediaCtx, mediaCancel := context.WithTimeout(rootCtx, 10*time.Second)
	mediaStore, err := newMediaStorage(mediaCtx, cfg)
	mediaCancel()
	if err != nil {
		log.Error("media_connect_failed", slog.String("driver", cfg.Media.Driver), slog.String("err", err.Error()))
		rootCancel()
		closeStore()
		os.Exit(1)
	}
	log.Info("media_connected", slog.String("driver", cfg.Media.Driver))

	svc := service.New(accountsStore, mediaStore, cfg.Auth)
	log.Info("service_initialized")

	router := httptransport.NewRouter(svc, httptransport.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		BasePath: cfg.HTTP.BasePath,
		Metrics:  middleware.NewMetrics(prometheus.DefaultRegisterer),
		Handlers: handlers.Options{
			JSONBodyLimit:   cfg.HTTP.JSONBodyLimit,
			MultipartMemory: cfg.HTTP.MultipartMemory,
			MaxUploadBytes:  cfg.Media.MaxUploadBytes,
			TempDir:         cfg.Media.TempDir,
			CookieSecure:    cfg.Auth.CookieSecure,
		},
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	}
	shutdownCancel()

	rootCancel()
	closeStore()

	log.Info("service_stopped")
	os.Exit(0)
}

// newMediaStorage выбирает объектное хранилище по media.driver.
func newMediaStorage(ctx context.Context, cfg *config.Config) (storage.MediaStorage, error) {
	if cfg.Media.Driver == config.MediaDriverS3 {
		return s3.New(ctx, cfg.S3)
	}

	return minio.New(ctx, cfg.S3)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
